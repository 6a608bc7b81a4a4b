package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewAncestorsCommand creates the ancestors command.
func NewAncestorsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ancestors <id>",
		Short: "Print a place's ancestor chain, nearest first",
		Long: `Walk the parent chain from the given place up to the root of its
hierarchy and print each ancestor, nearest first.

Example:
  gazetteer ancestors --db places.db 102027145`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid id", err)
			}
			return runAncestors(cmd, rootOpts, id)
		},
	}

	return cmd
}

func runAncestors(cmd *cobra.Command, rootOpts *RootOptions, id int64) error {
	ctx := cmd.Context()
	f, _, err := openFederation(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer f.Close()

	chain, err := f.GetAncestors(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "resolve ancestors", err)
	}

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
	if done, err := out.JSON(chain); done {
		return err
	}
	for i, p := range chain {
		out.Printf("%d\t%d\t%s\t%s\n", i+1, p.ID, p.Name, p.Placetype)
	}
	return nil
}
