package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rstorcloud/alfredo/internal/pluck"
	"github.com/rstorcloud/alfredo/internal/traverse"
	"github.com/rstorcloud/alfredo/pkg/ruote"
)

var (
	verbCreate   bool
	verbRetrieve bool
	verbUpdate   bool
	verbDelete   bool
	verbReplace  bool

	ruoteInput  string
	ruoteOutput string
)

var ruoteCmd = &cobra.Command{
	Use:   "ruote PATH...",
	Short: "Navigate the API resource tree and apply one verb",
	Long: `Resolve PATH tokens to a resource and apply one verb to it. Plain
tokens name child resources (users, sso); name:value tokens select records by
key (id:343). Exactly one verb runs per invocation; retrieve is the default.
Create, update, and replace send the -i payload (or stdin); retrieve and
delete send nothing. -o projects fields out of the response: comma-separated
selectors, dots descend into nested mappings, a lone integer indexes a list.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRuote,
}

func init() {
	f := ruoteCmd.Flags()
	f.BoolVarP(&verbCreate, "create", "C", false, "create the resource (POST)")
	f.BoolVarP(&verbRetrieve, "retrieve", "R", false, "retrieve the resource (GET, default)")
	f.BoolVarP(&verbUpdate, "update", "U", false, "update the resource (PATCH)")
	f.BoolVarP(&verbDelete, "delete", "D", false, "delete the resource (DELETE)")
	f.BoolVarP(&verbReplace, "replace", "X", false, "replace the resource (PUT)")
	ruoteCmd.MarkFlagsMutuallyExclusive("create", "retrieve", "update", "delete", "replace")

	f.StringVarP(&ruoteInput, "input", "i", "",
		"request payload (YAML/JSON mapping); omitted reads stdin")
	f.StringVarP(&ruoteOutput, "output", "o", "",
		"projection applied to the response (comma-separated selectors)")
}

func runRuote(cmd *cobra.Command, args []string) error {
	ctx := commandContext()
	run := runSettings(ctx)

	client := newRuoteClient(ctx, run)
	target, err := traverse.Path(client.Root(), args)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return &ExitError{Code: 1}
	}

	resp, err := dispatchVerb(ctx, cmd, target, run.Timeout)
	if err != nil {
		return err
	}

	if err := printResponse(cmd, resp); err != nil {
		return err
	}
	if code := resp.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// dispatchVerb runs exactly one verb against the resolved resource. The
// payload is acquired only for the verbs that carry one, so a plain retrieve
// never touches stdin.
func dispatchVerb(ctx context.Context, cmd *cobra.Command, target ruote.Resource, timeout time.Duration) (*ruote.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch {
	case verbCreate:
		input, err := acquirePayload(cmd, ruoteInput)
		if err != nil {
			return nil, err
		}
		return target.Create(reqCtx, input)
	case verbUpdate:
		input, err := acquirePayload(cmd, ruoteInput)
		if err != nil {
			return nil, err
		}
		return target.Update(reqCtx, input)
	case verbReplace:
		input, err := acquirePayload(cmd, ruoteInput)
		if err != nil {
			return nil, err
		}
		return target.Replace(reqCtx, input)
	case verbDelete:
		return target.Delete(reqCtx)
	case verbRetrieve:
		return target.Retrieve(reqCtx)
	default:
		// No verb flag at all; retrieve is the default.
		return target.Retrieve(reqCtx)
	}
}

// printResponse writes the response body to stdout, projected through -o when
// one was given. An empty -o is the same as none.
func printResponse(cmd *cobra.Command, resp *ruote.Response) error {
	if ruoteOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), resp.String())
		return nil
	}

	projected, err := pluck.Project(resp.Node(), pluck.ParseSpec(ruoteOutput))
	if err != nil {
		return err
	}
	rendered, err := pluck.Encode(projected)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}
