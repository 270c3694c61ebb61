package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rstorcloud/alfredo/pkg/logger"
	"github.com/rstorcloud/alfredo/pkg/payload"
	"github.com/rstorcloud/alfredo/pkg/ruote"
	"github.com/rstorcloud/alfredo/pkg/settings"
)

// tokenFileName is the session token file, relative to the working directory.
// Sessions are per-directory on purpose.
const tokenFileName = ".token"

// writeToken stores the raw token string, exact bytes, overwriting wholesale.
func writeToken(token string) error {
	if err := os.WriteFile(tokenFileName, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// readToken returns the stored token, or the empty string when not logged in.
func readToken() string {
	data, err := os.ReadFile(tokenFileName)
	if err != nil {
		return ""
	}
	return string(data)
}

// newRuoteClient builds an API client from the resolved run settings and the
// stored session token, if any.
func newRuoteClient(ctx context.Context, run *settings.Run) *ruote.Client {
	return ruote.NewClient(run.RuoteURL,
		ruote.WithToken(readToken()),
		ruote.WithHTTPClient(&http.Client{Timeout: run.Timeout}),
		ruote.WithLogger(*logger.FromContext(ctx)),
	)
}

// acquirePayload produces the request payload for the payload-carrying verbs.
// An explicit -i value is decoded as given; otherwise stdin is read to EOF,
// with a prompt first when stdin is a terminal. Blank input decodes to an
// empty mapping.
func acquirePayload(cmd *cobra.Command, flagValue string) (map[string]any, error) {
	if cmd.Flags().Changed("input") {
		return payload.Decode(flagValue)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.OutOrStdout(), "Enter input:")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read input from stdin: %w", err)
	}
	return payload.Decode(string(data))
}
