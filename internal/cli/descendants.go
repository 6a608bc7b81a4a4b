package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// NewDescendantsCommand creates the descendants command.
func NewDescendantsCommand(rootOpts *RootOptions) *cobra.Command {
	var placetype string
	var directOnly bool
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "descendants <id>",
		Short: "Print the places contained by a place",
		Long: `Print every place whose ancestor chain includes the given id.
--direct restricts the result to immediate children.

Example:
  gazetteer descendants --db places.db 85688637 --placetype locality`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid id", err)
			}
			return runDescendants(cmd, rootOpts, ff, id, placetype, directOnly)
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&placetype, "of-placetype", "", "restrict to one placetype")
	cmd.Flags().BoolVar(&directOnly, "direct", false, "immediate children only")

	return cmd
}

func runDescendants(cmd *cobra.Command, rootOpts *RootOptions, ff *filterFlags, id int64, placetype string, directOnly bool) error {
	ctx := cmd.Context()
	f, defaults, err := openFederation(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer f.Close()

	var pt wof.PlaceType
	if placetype != "" {
		pt, err = wof.ParsePlaceType(placetype)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid placetype", err)
		}
	}

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

	if directOnly {
		c, err := f.GetChildren(ctx, id, pt)
		if err != nil {
			return WrapExitError(ExitFailure, "resolve children", err)
		}
		return printPlaces(out, c.Places(), c.TotalCount())
	}

	extra, err := ff.spec()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}
	applyDefaults(&extra, defaults)
	if pt != "" {
		extra.Placetypes = append(extra.Placetypes, pt)
	}
	c, err := f.GetDescendants(ctx, id, extra)
	if err != nil {
		return WrapExitError(ExitFailure, "resolve descendants", err)
	}
	return printPlaces(out, c.Places(), c.TotalCount())
}
