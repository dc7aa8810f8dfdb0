package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/journal"
)

type journalOptions struct {
	db      string
	surface int32
}

// NewJournalCommand creates the journal command and its subcommands.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &journalOptions{}
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read the commit journal",
		Long: `Read revisions recorded by diff and inspect when journal.path is set.
The journal file can also be named with --db.`,
	}
	cmd.PersistentFlags().StringVar(&opts.db, "db", "", "journal file (default journal.path from config)")
	cmd.PersistentFlags().Int32Var(&opts.surface, "surface", 0, "surface to read (default all for list, 1 for show)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List journaled revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(rootOpts, opts, func(j *journal.Journal) error {
				return runJournalList(rootOpts, opts, j, cmd.OutOrStdout())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <revision>",
		Short: "Show the mutations of one revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid revision %q", args[0])
			}
			return withJournal(rootOpts, opts, func(j *journal.Journal) error {
				return runJournalShow(rootOpts, opts, j, n, cmd.OutOrStdout())
			})
		},
	})
	return cmd
}

func withJournal(rootOpts *RootOptions, opts *journalOptions, fn func(*journal.Journal) error) error {
	path := opts.db
	if path == "" {
		path = rootOpts.Config.JournalPath
	}
	if path == "" {
		return errors.Newf("cmd.journal", errors.KindConfig, "no journal: set journal.path or pass --db")
	}
	j, err := journal.Open(path, rootOpts.Logger)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

func runJournalList(rootOpts *RootOptions, opts *journalOptions, j *journal.Journal, w io.Writer) error {
	surfaces := []int32{opts.surface}
	if opts.surface == 0 {
		var err error
		if surfaces, err = j.Surfaces(); err != nil {
			return err
		}
	}
	var all []journal.Entry
	for _, s := range surfaces {
		entries, err := j.List(s)
		if err != nil {
			return err
		}
		all = append(all, entries...)
	}

	if rootOpts.Format == "json" {
		if all == nil {
			all = []journal.Entry{}
		}
		return writeJSON(w, all)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SURFACE\tREVISION\tID\tTIME\tMUTATIONS")
	for _, e := range all {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\n", e.Surface, e.Revision, e.ID, e.Timestamp.Format(time.RFC3339), len(e.Lines))
	}
	return tw.Flush()
}

func runJournalShow(rootOpts *RootOptions, opts *journalOptions, j *journal.Journal, n int64, w io.Writer) error {
	surface := opts.surface
	if surface == 0 {
		surface = 1
	}
	e, err := j.Get(surface, n)
	if err != nil {
		return err
	}
	if rootOpts.Format == "json" {
		return writeJSON(w, e)
	}
	fmt.Fprintf(w, "surface %d revision %d (%s)\n", e.Surface, e.Revision, e.ID)
	for _, line := range e.Lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
