// Package settings provides build metadata, runtime configuration, and
// context helpers used across the alfredo CLI and library packages.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "alfredo"

// DefaultRuoteURL is the service endpoint used when neither the config file
// nor the environment overrides it.
const DefaultRuoteURL = "https://ruote.rstorcloud.io/api/v1"

// DefaultRequestTimeout bounds a single API request end to end.
const DefaultRequestTimeout = 30 * time.Second

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "0.0.1",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// It carries the resolved service endpoint, request timeout, and logging level
// from flag/config/environment resolution to the individual commands.
type Run struct {
	MinLogLevel int8
	RuoteURL    string
	Timeout     time.Duration
	NoColor     bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default
// CLI parameters: info-level logging, the default endpoint, and the default
// request timeout.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		RuoteURL:    DefaultRuoteURL,
		Timeout:     DefaultRequestTimeout,
		NoColor:     false,
	}
}
