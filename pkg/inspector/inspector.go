// Package inspector serves committed shadow trees over HTTP for debugging.
//
// Routes:
//
//	GET /health
//	GET /surfaces
//	GET /surfaces/{surface}/tree       shadow nodes, flattened ones included
//	GET /surfaces/{surface}/views      the mounted view hierarchy
//	GET /surfaces/{surface}/mutations  mutations of the current revision
//	GET /surfaces/{surface}/journal    journaled revisions, when a History is set
package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/journal"
	"github.com/go-drift/shadow/pkg/mounting"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// History reads journaled revisions.
type History interface {
	List(surface int32) ([]journal.Entry, error)
}

// Server serves the trees of a SurfaceRegistry.
type Server struct {
	registry *mounting.SurfaceRegistry
	history  History
	log      *slog.Logger
	router   chi.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New returns a server for registry. history may be nil.
func New(registry *mounting.SurfaceRegistry, history History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{registry: registry, history: history, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/surfaces", s.handleSurfaces)
	r.Route("/surfaces/{surface}", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/views", s.handleViews)
		r.Get("/mutations", s.handleMutations)
		r.Get("/journal", s.handleJournal)
	})
	s.router = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr for port 0.
func (s *Server) Start(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("inspector listen: %w", err)
	}
	server := &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			s.log.Error("inspector stopped", "error", err)
		}
	}()
	s.log.Info("inspector listening", "addr", listener.Addr().String())
	return listener.Addr(), nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// SurfaceInfo summarizes one surface.
type SurfaceInfo struct {
	Surface    int32  `json:"surface"`
	Revision   int64  `json:"revision"`
	RevisionID string `json:"revision_id"`
	Nodes      int    `json:"nodes"`
	Failed     string `json:"failed,omitempty"`
}

func (s *Server) handleSurfaces(w http.ResponseWriter, r *http.Request) {
	out := []SurfaceInfo{}
	for _, id := range s.registry.Surfaces() {
		tree, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		rev := tree.Current()
		info := SurfaceInfo{Surface: int32(id), Revision: rev.Number, RevisionID: rev.ID.String()}
		rev.Root.Walk(func(*core.ShadowNode) bool {
			info.Nodes++
			return true
		})
		if err := tree.Err(); err != nil {
			info.Failed = err.Error()
		}
		out = append(out, info)
	}
	writeJSON(w, out)
}

// tree resolves the {surface} parameter, writing the error response itself.
func (s *Server) tree(w http.ResponseWriter, r *http.Request) (*mounting.ShadowTree, bool) {
	raw := chi.URLParam(r, "surface")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid surface %q", raw), http.StatusBadRequest)
		return nil, false
	}
	tree, ok := s.registry.Get(core.SurfaceID(id))
	if !ok {
		http.Error(w, fmt.Sprintf("surface %d: %v", id, errors.ErrNotFound), http.StatusNotFound)
		return nil, false
	}
	return tree, true
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	writeJSON(w, serializeNode(tree.Root(), 0))
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	writeJSON(w, serializeView(mounting.BuildStubViewTree(tree.Root()).Root(), 0))
}

func (s *Server) handleMutations(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	rev := tree.Current()
	resp := struct {
		Revision   int64              `json:"revision"`
		RevisionID string             `json:"revision_id"`
		Mutations  mounting.Mutations `json:"mutations"`
	}{rev.Number, rev.ID.String(), rev.Mutations}
	if resp.Mutations == nil {
		resp.Mutations = mounting.Mutations{}
	}
	writeJSON(w, resp)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w, r)
	if !ok {
		return
	}
	if s.history == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	entries, err := s.history.List(int32(tree.SurfaceID()))
	if err != nil {
		s.log.Error("journal read failed", "surface_id", int32(tree.SurfaceID()), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, entries)
}

// writeJSON encodes to a buffer first so encoding errors still produce a 500.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
