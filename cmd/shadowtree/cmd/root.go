// Package cmd implements the shadowtree CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/cmd/shadowtree/internal/config"
	"github.com/go-drift/shadow/pkg/errors"
)

// Version information set at build time.
var Version = "0.1.0-dev"

// RootOptions holds global flags and the state they resolve to.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	Config *config.Resolved
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "shadowtree",
		Short:   "Diff, render and inspect shadow tree documents",
		Version: Version,
		Long: `shadowtree builds immutable shadow trees from YAML documents, lays them
out and turns the difference between two commits into a mutation list.

Settings come from shadow.yaml in the working directory, or the file named
by --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Resolve(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Logger = cfg.Logger(cmd.ErrOrStderr(), opts.Verbose)
			errors.SetHandler(&errors.LogHandler{Logger: opts.Logger, Verbose: opts.Verbose})
			if cfg.Path != "" {
				opts.Logger.Debug("config loaded", "path", cfg.Path)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./shadow.yaml if present)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	recoverCommands(cmd)

	return cmd
}

// recoverCommands wraps the RunE of every subcommand of c so a panic is
// reported through the error handler and returned as an error.
func recoverCommands(c *cobra.Command) {
	for _, sub := range c.Commands() {
		if run := sub.RunE; run != nil {
			op := "cmd." + strings.ReplaceAll(sub.CommandPath(), " ", ".")
			name := sub.Name()
			sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
				defer errors.RecoverWithCallback(op, func(r any) {
					err = fmt.Errorf("%s: internal error: %v", name, r)
				})
				return run(cmd, args)
			}
		}
		recoverCommands(sub)
	}
}
