package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/mounting"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old.yaml> <new.yaml>",
		Short: "Print the mutations that turn one document into another",
		Long: `Commit both documents to one surface, in order, and print the mutation
list of the second commit. Elements are matched across the documents by tag.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runDiff(opts *RootOptions, w io.Writer, oldPath, newPath string) error {
	docs, err := loadDocuments(oldPath, newPath)
	if err != nil {
		return err
	}
	j, err := openJournal(opts)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}
	s, err := openSession(opts, docs[0].Surface, opts.Config.Constraints(), j)
	if err != nil {
		return err
	}

	if _, err := s.commit(docs[0]); err != nil {
		return err
	}
	rev, err := s.commit(docs[1])
	if err != nil {
		return err
	}
	opts.Logger.Debug("diff", "surface_id", docs[0].Surface, "revision", rev.Number, "mutations", len(rev.Mutations))
	return writeMutations(w, opts.Format, rev)
}

func writeMutations(w io.Writer, format string, rev mounting.Revision) error {
	if format == "json" {
		muts := rev.Mutations
		if muts == nil {
			muts = mounting.Mutations{}
		}
		return writeJSON(w, struct {
			Revision   int64              `json:"revision"`
			RevisionID string             `json:"revision_id"`
			Mutations  mounting.Mutations `json:"mutations"`
		}{rev.Number, rev.ID.String(), muts})
	}
	_, err := io.WriteString(w, rev.Mutations.String())
	return err
}
