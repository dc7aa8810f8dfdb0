package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/inspector"
	"github.com/go-drift/shadow/pkg/mounting"
)

type inspectOptions struct {
	addr string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <doc.yaml>...",
		Short: "Serve committed documents over HTTP",
		Long: `Commit each document to its surface and serve the trees with the HTTP
inspector until interrupted. Documents of the same surface are committed in
order, so the inspector shows the mutations of the last one.

Endpoints: /health, /surfaces, /surfaces/{id}/tree, /surfaces/{id}/views,
/surfaces/{id}/mutations and /surfaces/{id}/journal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, opts, cmd, args)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default inspector.addr from config)")
	return cmd
}

func runInspect(rootOpts *RootOptions, opts *inspectOptions, cmd *cobra.Command, paths []string) error {
	j, err := openJournal(rootOpts)
	if err != nil {
		return err
	}
	var history inspector.History
	if j != nil {
		defer j.Close()
		history = j
	}

	registry := mounting.NewSurfaceRegistry()
	sessions := make(map[int32]*session)

	for _, path := range paths {
		docs, err := loadDocuments(path)
		if err != nil {
			return err
		}
		doc := docs[0]
		s, ok := sessions[doc.Surface]
		if !ok {
			if s, err = openSession(rootOpts, doc.Surface, rootOpts.Config.Constraints(), j); err != nil {
				return err
			}
			sessions[doc.Surface] = s
			registry.Add(s.tree)
		}
		if _, err := s.commit(doc); err != nil {
			return err
		}
	}

	addr := opts.addr
	if addr == "" {
		addr = rootOpts.Config.InspectorAddr
	}
	server := inspector.New(registry, history, rootOpts.Logger)
	bound, err := server.Start(addr)
	if err != nil {
		return err
	}
	defer server.Stop()
	fmt.Fprintf(cmd.OutOrStdout(), "inspector listening on http://%s\n", bound)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
