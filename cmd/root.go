// Package cmd wires the alfredo command tree: login, logout, and ruote.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rstorcloud/alfredo/pkg/logger"
	"github.com/rstorcloud/alfredo/pkg/settings"
)

var (
	debug      bool
	noColor    bool
	configFile string

	// rootCtx carries the logger and resolved run settings to every command.
	rootCtx context.Context
)

// ExitError carries a process exit code out of a command whose output has
// already been printed. Execute unwraps it instead of printing.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	return fmt.Sprintf("%s %s (%s)", settings.CliBinaryName, settings.VersionInformation.BuildVersion, runtime.Version())
}

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Command-line client for the RStor ruote API",
	Long: `alfredo is a command-line client for the RStor ruote API.

Authenticate with login, then navigate the API resource tree with ruote:
path tokens name child resources (users, clusters, queues, files, apps,
jobs, sso) and name:value tokens select individual records, as in id:343.
A verb flag picks the operation applied to the resolved resource, and -o
projects fields out of the response.`,
	Example: "\n  alfredo login -i 'email: alice@example.com'" +
		"\n  alfredo ruote users me" +
		"\n  alfredo ruote users id:343 -o username" +
		"\n  alfredo ruote queues -C -i 'name: batch'" +
		"\n  alfredo ruote files -C -i 'file: /home/alice/data.bin'" +
		"\n  alfredo ruote jobs id:723 -o output_files" +
		"\n  alfredo logout\n",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
		var level int8 = 0
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		// Attach basic context about the command
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run, err := resolveRunSettings(level)
		if err != nil {
			return err
		}
		if run.NoColor {
			color.NoColor = true
		}
		logSetFlags(cmd, lgr)

		rootCtx = logger.WithLogger(context.Background(), lgr)
		rootCtx = settings.IntoContext(rootCtx, run)
		return nil
	},
}

// logSetFlags records which flags were set, by name only: input payloads may
// carry credentials.
func logSetFlags(cmd *cobra.Command, lgr *logr.Logger) {
	var names []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	if len(names) > 0 {
		lgr.V(1).Info("flags set", "flags", strings.Join(names, ","))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored error output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file (endpoint, timeout)")

	rootCmd.Version = cliVersionString()
	rootCmd.Flags().BoolP("version", "V", false, "version for "+settings.CliBinaryName)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(ruoteCmd)
}

// Execute runs the command tree and maps the outcome to a process exit code.
// Command output is the command's own business; only unexpected errors are
// printed here.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	color.New(color.FgRed).Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

// commandContext returns the context assembled by PersistentPreRunE, or a
// plain background context when a command runs outside Execute.
func commandContext() context.Context {
	if rootCtx != nil {
		return rootCtx
	}
	return context.Background()
}

// runSettings pulls the resolved settings out of the context.
func runSettings(ctx context.Context) *settings.Run {
	if run, ok := settings.FromContext(ctx); ok {
		return run
	}
	return settings.NewCliParams()
}
