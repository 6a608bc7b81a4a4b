package cli

import (
	"github.com/spf13/cobra"
)

// NewSourcesCommand creates the sources command.
func NewSourcesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List attached sources and federation capabilities",
		Long: `Attach the configured sources and report each one's alias, path,
and optional tables, plus the capabilities of the federation as a
whole.

Example:
  gazetteer sources --manifest sources.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd, rootOpts)
		},
	}

	return cmd
}

func runSources(cmd *cobra.Command, rootOpts *RootOptions) error {
	ctx := cmd.Context()
	f, _, err := openFederation(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer f.Close()

	sources := f.Sources()
	caps := f.Capabilities()

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
	if done, err := out.JSON(map[string]any{
		"sources":      sources,
		"capabilities": caps,
	}); done {
		return err
	}

	for i, s := range sources {
		out.Printf("%d\t%s\t%s\n", i+1, s.Alias, s.Path)
		for _, table := range []string{"names", "ancestors", "geojson"} {
			if s.Tables[table] {
				out.Printf("\t+ %s\n", table)
			}
		}
	}
	out.Printf("localized names: %v, ancestor closure: %v, geometry: %v\n",
		caps.HasNames, caps.HasAncestors, caps.HasGeometry)
	return nil
}
