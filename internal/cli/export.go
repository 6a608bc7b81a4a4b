package cli

import (
	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}
	var (
		format     string
		outPath    string
		properties []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Search and serialize the results to a file or stdout",
		Long: `Run a search and serialize the full result set in the chosen
format. Geometry is materialized in batches, so large result sets do
not load every shape at once.

Example:
  gazetteer export --db places.db --placetype locality --to geojson --out localities.geojson
  gazetteer export --db places.db --country BB --to csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, ff, export.Format(format), outPath, properties)
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&format, "to", string(export.FormatGeoJSON), "output format: geojson|csv|wkt")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&properties, "property", nil, "geojson properties to emit (repeatable)")

	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, ff *filterFlags, format export.Format, outPath string, properties []string) error {
	spec, err := ff.spec()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

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
	coll, err := cur.FetchAll(ctx, true)
	if err != nil {
		return WrapExitError(ExitFailure, "materialize results", err)
	}

	opts := export.Options{
		RequireGeometry: spec.RequireGeometry,
		Properties:      properties,
	}
	if outPath != "" {
		if err := export.WriteFile(outPath, format, coll.Places(), opts); err != nil {
			return WrapExitError(ExitCommandError, "write export", err)
		}
		return nil
	}

	s, err := export.New(format)
	if err != nil {
		return WrapExitError(ExitCommandError, "select format", err)
	}
	data, err := s.Serialize(coll.Places(), opts)
	if err != nil {
		return WrapExitError(ExitFailure, "serialize", err)
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return WrapExitError(ExitFailure, "write output", err)
	}
	return nil
}
