package cmd

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/mounting"
	"github.com/go-drift/shadow/pkg/terminal"
)

type renderOptions struct {
	dump bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <doc.yaml>",
		Short: "Lay out a document and draw it in the terminal",
		Long: `Lay out a document at the terminal's size and draw its mounted views.
The surface follows terminal resizes. Press q or Esc to exit.

With --dump the mounted view tree is printed at the configured surface size
instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dump {
				return runRenderDump(rootOpts, cmd.OutOrStdout(), args[0])
			}
			return runRender(rootOpts, cmd, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the mounted views instead of drawing them")
	return cmd
}

func runRenderDump(opts *RootOptions, w io.Writer, path string) error {
	docs, err := loadDocuments(path)
	if err != nil {
		return err
	}
	s, err := openSession(opts, docs[0].Surface, opts.Config.Constraints(), nil)
	if err != nil {
		return err
	}
	rev, err := s.commit(docs[0])
	if err != nil {
		return err
	}
	views := mounting.BuildStubViewTree(rev.Root)
	if opts.Format == "json" {
		return writeJSON(w, flattenViews(views.Root()))
	}
	_, err = io.WriteString(w, views.String())
	return err
}

// flattenViews lists the mounted views depth first.
func flattenViews(v *mounting.StubView) []mounting.ShadowView {
	out := []mounting.ShadowView{v.View}
	for _, c := range v.Children {
		out = append(out, flattenViews(c)...)
	}
	return out
}

func runRender(opts *RootOptions, cmd *cobra.Command, path string) error {
	docs, err := loadDocuments(path)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.New("cmd.render", errors.KindConfig, err)
	}
	if err := screen.Init(); err != nil {
		return errors.New("cmd.render", errors.KindConfig, err)
	}
	defer screen.Fini()

	// Log lines would tear the screen.
	quiet := *opts
	quiet.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	errors.SetHandler(&errors.LogHandler{Logger: quiet.Logger})
	defer errors.SetHandler(&errors.LogHandler{Logger: opts.Logger, Verbose: opts.Verbose})

	host := terminal.New(screen, terminal.Options{Logger: quiet.Logger})
	constraints := opts.Config.Constraints()
	constraints.MinimumSize = host.SurfaceSize()
	constraints.MaximumSize = constraints.MinimumSize
	s, err := openSession(&quiet, docs[0].Surface, constraints, nil)
	if err != nil {
		return err
	}
	if _, err := s.commit(docs[0]); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := host.Run(ctx, s.tree); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
