package cli

import (
	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}
	var withGeometry bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search attached sources with filter predicates",
		Long: `Search every attached source with the given predicates and print
the matches in a stable order.

Example:
  gazetteer search --db places.db --placetype locality --ancestor-name California
  gazetteer search --manifest sources.yaml --name bridgetown --current true --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := ff.spec()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter", err)
			}
			return runSearch(cmd, rootOpts, spec, withGeometry)
		},
	}

	ff.register(cmd)
	cmd.Flags().BoolVar(&withGeometry, "with-geometry", false, "materialize and print geometry")

	return cmd
}

func runSearch(cmd *cobra.Command, rootOpts *RootOptions, spec wof.FilterSpec, withGeometry bool) error {
	ctx := cmd.Context()
	f, defaults, err := openFederation(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer f.Close()
	applyDefaults(&spec, defaults)

	cur, err := f.Search(ctx, spec)
	if err != nil {
		return WrapExitError(ExitFailure, "search", err)
	}

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
	if withGeometry {
		coll, err := cur.FetchAll(ctx, true)
		if err != nil {
			return WrapExitError(ExitFailure, "materialize results", err)
		}
		return printPlacesWithGeometry(out, coll.Places(), cur.TotalCount())
	}
	return printPlaces(out, cur.Places(), cur.TotalCount())
}

func printPlaces(out *OutputFormatter, places []wof.Place, total int) error {
	if done, err := out.JSON(map[string]any{"total": total, "places": places}); done {
		return err
	}
	for _, p := range places {
		out.Printf("%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Placetype, p.Country, p.Status())
	}
	out.Printf("%d of %d\n", len(places), total)
	return nil
}

func printPlacesWithGeometry(out *OutputFormatter, places []wof.PlaceWithGeometry, total int) error {
	if done, err := out.JSON(map[string]any{"total": total, "places": places}); done {
		return err
	}
	for _, p := range places {
		geom := "-"
		if p.Geometry != nil {
			geom = p.Geometry.Type
		}
		out.Printf("%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Placetype, p.Country, geom)
	}
	out.Printf("%d of %d\n", len(places), total)
	return nil
}
