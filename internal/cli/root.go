package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/federation"
	"github.com/geoplaces/gazetteer/internal/manifest"
	"github.com/geoplaces/gazetteer/internal/wof"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Sources  []string
	Manifest string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gazetteer CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gazetteer",
		Short: "Query federated place databases",
		Long: `Read-only queries over one or more Who's On First place databases,
federated behind a single connection. Sources come from repeated --db
flags or a YAML manifest.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			logLevel := slog.LevelWarn
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringArrayVar(&opts.Sources, "db", nil, "place database to attach (repeatable, attach order)")
	cmd.PersistentFlags().StringVar(&opts.Manifest, "manifest", "", "YAML manifest of sources to attach")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAncestorsCommand(opts))
	cmd.AddCommand(NewDescendantsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewSourcesCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openFederation attaches the sources named by the global flags. The
// manifest, when given, is authoritative; --db flags append after it.
// Manifest query defaults come back alongside the federation so
// commands can fill unset filter fields.
func openFederation(ctx context.Context, opts *RootOptions) (*federation.Federation, manifest.Defaults, error) {
	var defaults manifest.Defaults
	refs := make([]federation.Ref, 0, len(opts.Sources))
	if opts.Manifest != "" {
		m, err := manifest.Load(opts.Manifest)
		if err != nil {
			return nil, defaults, WrapExitError(ExitCommandError, "load manifest", err)
		}
		defaults = m.Defaults
		for i, path := range m.Paths() {
			refs = append(refs, federation.Ref{Path: path, Alias: m.Sources[i].Alias})
		}
	}
	for _, path := range opts.Sources {
		refs = append(refs, federation.Ref{Path: path})
	}
	if len(refs) == 0 {
		return nil, defaults, WrapExitError(ExitCommandError, "no sources: pass --db or --manifest", nil)
	}

	f, err := federation.AttachRefs(ctx, refs)
	if err != nil {
		return nil, defaults, WrapExitError(ExitCommandError, "attach sources", err)
	}
	return f, defaults, nil
}

// applyDefaults fills filter fields the caller left unset from manifest
// defaults. Explicit flags always win.
func applyDefaults(spec *wof.FilterSpec, d manifest.Defaults) {
	if spec.Limit == 0 && d.Limit > 0 {
		spec.Limit = d.Limit
	}
	if spec.SortBy == "" && d.SortBy != "" {
		spec.SortBy = d.SortBy
	}
	if spec.Order == "" && d.Order != "" {
		spec.Order = wof.SortOrder(d.Order)
	}
}
