package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rstorcloud/alfredo/internal/traverse"
)

var loginInput string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a session token and store it in ./" + tokenFileName,
	Long: `Exchange credentials for a session token via sso token_by_email and
store the token in ` + tokenFileName + ` in the working directory. Credentials
come from -i or from stdin, as a mapping (YAML or JSON), typically
'email: you@example.com'.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginInput, "input", "i", "",
		"credentials payload (YAML/JSON mapping); omitted reads stdin")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := commandContext()
	run := runSettings(ctx)

	input, err := acquirePayload(cmd, loginInput)
	if err != nil {
		return err
	}

	client := newRuoteClient(ctx, run)
	target, err := traverse.Path(client.Root(), []string{"sso", "token_by_email"})
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, run.Timeout)
	defer cancel()
	resp, err := target.Create(reqCtx, input)
	if err != nil {
		return err
	}

	if !resp.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), resp.String())
		return &ExitError{Code: resp.ExitCode()}
	}

	token, ok := resp.StringField("token")
	if !ok {
		return fmt.Errorf("login succeeded but the response carries no token field")
	}
	return writeToken(token)
}
