package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var withGeometry bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one place record by id",
		Long: `Print the record for one place id. When the same id exists in more
than one source, the first-attached source wins.

Example:
  gazetteer show --db places.db 102027145 --with-geometry`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid id", err)
			}
			return runShow(cmd, rootOpts, id, withGeometry)
		},
	}

	cmd.Flags().BoolVar(&withGeometry, "with-geometry", false, "include stored geometry")

	return cmd
}

func runShow(cmd *cobra.Command, rootOpts *RootOptions, id int64, withGeometry bool) error {
	ctx := cmd.Context()
	f, _, err := openFederation(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer f.Close()

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

	if withGeometry {
		records, _, err := f.FetchByIDs(ctx, []int64{id}, true)
		if err != nil {
			return WrapExitError(ExitFailure, "fetch place", err)
		}
		if len(records) == 0 {
			return WrapExitError(ExitFailure, "place not found", nil)
		}
		rec := records[0]
		if done, err := out.JSON(rec); done {
			return err
		}
		printPlaceText(out, rec.Place)
		if rec.Geometry != nil {
			out.Printf("geometry:\t%s\n", rec.Geometry.Type)
		}
		return nil
	}

	p, err := f.GetPlace(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "fetch place", err)
	}
	if done, err := out.JSON(p); done {
		return err
	}
	printPlaceText(out, p)
	return nil
}

func printPlaceText(out *OutputFormatter, p wof.Place) {
	out.Printf("id:\t%d\n", p.ID)
	out.Printf("name:\t%s\n", p.Name)
	out.Printf("placetype:\t%s\n", p.Placetype)
	if p.ParentID != nil {
		out.Printf("parent:\t%d\n", *p.ParentID)
	}
	if p.Country != "" {
		out.Printf("country:\t%s\n", p.Country)
	}
	if p.Region != "" {
		out.Printf("region:\t%s\n", p.Region)
	}
	out.Printf("status:\t%s\n", p.Status())
	if lat, ok := p.Latitude(); ok {
		lon, _ := p.Longitude()
		out.Printf("centroid:\t%g, %g\n", lat, lon)
	}
	out.Printf("source:\t%s (%s)\n", p.Source, p.Alias)
}
