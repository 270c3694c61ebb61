package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rstorcloud/alfredo/pkg/settings"
)

// clientConfig is the on-disk shape of the optional config file.
type clientConfig struct {
	RuoteURL string `yaml:"ruote_url"`
	Timeout  string `yaml:"timeout"`
}

// resolveRunSettings assembles the per-invocation settings from defaults, the
// config file, and the environment. Precedence, lowest to highest: built-in
// defaults, config file, ALFREDO_RUOTE_URL.
func resolveRunSettings(level int8) (*settings.Run, error) {
	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.NoColor = noColor || os.Getenv("NO_COLOR") != ""

	path, explicit := resolveConfigPath(configFile)
	if path != "" {
		cfg, err := loadClientConfig(path, explicit)
		if err != nil {
			return nil, err
		}
		if cfg.RuoteURL != "" {
			run.RuoteURL = cfg.RuoteURL
		}
		if cfg.Timeout != "" {
			d, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("config %s: invalid timeout: %w", path, err)
			}
			run.Timeout = d
		}
	}

	if env := os.Getenv("ALFREDO_RUOTE_URL"); env != "" {
		run.RuoteURL = env
	}
	return run, nil
}

// loadClientConfig reads and parses one config file. A missing file is only an
// error when the path was given explicitly on the command line.
func loadClientConfig(path string, explicit bool) (clientConfig, error) {
	var cfg clientConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfigPath picks the config file location. An explicit --config-file
// wins; otherwise the XDG default locations are probed and a missing file
// resolves to no path at all.
func resolveConfigPath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, false
		}
	}
	return "", false
}
