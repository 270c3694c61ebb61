package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	Long: `Remove the ` + tokenFileName + ` file from the working directory.
Exits 0 when the token was removed and 1 when there was nothing to remove.
Prints nothing either way.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func runLogout(_ *cobra.Command, _ []string) error {
	// Outcome is the exit code alone; already-logged-out is silent too.
	if err := os.Remove(tokenFileName); err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}
