package cmd

import (
	"fmt"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/document"
	"github.com/go-drift/shadow/pkg/journal"
	"github.com/go-drift/shadow/pkg/mounting"
)

// session is one surface built from documents.
type session struct {
	tree    *mounting.ShadowTree
	builder *document.Builder
}

// openJournal opens the configured journal, or returns nil when none is.
func openJournal(opts *RootOptions) (*journal.Journal, error) {
	if opts.Config.JournalPath == "" {
		return nil, nil
	}
	return journal.Open(opts.Config.JournalPath, opts.Logger)
}

// openSession creates a surface. Commits are recorded in j when it is not nil.
func openSession(opts *RootOptions, surface int32, constraints core.LayoutConstraints, j *journal.Journal) (*session, error) {
	treeOpts := mounting.Options{
		Constraints: constraints,
		Context:     opts.Config.Context(),
		Logger:      opts.Logger,
	}
	if j != nil {
		treeOpts.Delegate = j
	}
	tree, err := mounting.NewShadowTree(core.SurfaceID(surface), components.Root, treeOpts)
	if err != nil {
		return nil, err
	}
	return &session{
		tree:    tree,
		builder: document.NewBuilder(components.NewRegistry(), core.SurfaceID(surface), opts.Logger),
	}, nil
}

func (s *session) commit(doc *document.Document) (mounting.Revision, error) {
	return s.builder.Commit(s.tree, doc)
}

func loadDocuments(paths ...string) ([]*document.Document, error) {
	docs := make([]*document.Document, len(paths))
	for i, p := range paths {
		doc, err := document.Load(p)
		if err != nil {
			return nil, err
		}
		if i > 0 && doc.Surface != docs[0].Surface {
			return nil, fmt.Errorf("%s is surface %d, %s is surface %d", paths[0], docs[0].Surface, p, doc.Surface)
		}
		docs[i] = doc
	}
	return docs, nil
}
