package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/rstorcloud/alfredo/pkg/settings"
)

// resetCommandState returns the package-level command tree and flag variables
// to their pristine state so tests can execute it repeatedly.
func resetCommandState(t *testing.T) {
	t.Helper()
	rootCtx = nil
	debug, noColor, configFile = false, false, ""
	loginInput = ""
	verbCreate, verbRetrieve, verbUpdate, verbDelete, verbReplace = false, false, false, false, false
	ruoteInput, ruoteOutput = "", ""
	for _, c := range []*cobra.Command{rootCmd, loginCmd, logoutCmd, ruoteCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

// runCLIInput executes the command tree the way main would, with the given
// stdin and both output streams captured.
func runCLIInput(t *testing.T, stdin io.Reader, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	resetCommandState(t)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetCommandState(t)
	})

	return Execute(), out.String(), errOut.String()
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	return runCLIInput(t, strings.NewReader(stdin), args...)
}

// isolate runs the test in an empty working directory with the environment
// that the config resolution and the API client read pinned down.
func isolate(t *testing.T, serverURL string) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ALFREDO_RUOTE_URL", serverURL)
	t.Setenv("NO_COLOR", "")
}

func TestExitErrorMessage(t *testing.T) {
	assert.EqualError(t, &ExitError{Code: 4}, "exit status 4")
}

func TestVersionFlag(t *testing.T) {
	isolate(t, "")
	code, out, errOut := runCLI(t, "", "-V")
	assert.Zero(t, code)
	assert.Empty(t, errOut)
	assert.Contains(t, out, settings.CliBinaryName+" "+settings.VersionInformation.BuildVersion)
}

func TestUnknownCommand(t *testing.T) {
	isolate(t, "")
	code, _, errOut := runCLI(t, "", "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "bogus")
}

func TestCliVersionString(t *testing.T) {
	s := cliVersionString()
	assert.Contains(t, s, settings.CliBinaryName)
	assert.Contains(t, s, settings.VersionInformation.BuildVersion)
	assert.Contains(t, s, "go")
}
