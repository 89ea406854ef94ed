package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// Server exposes collection management and diffing over HTTP. Stateless
// diffing lives at /api/diff; named collections live under /api/collections
// and publish their applied edit scripts to SSE subscribers.
type Server struct {
	manager *registry.Manager
	streams *StreamManager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts a metrics endpoint (usually promhttp.Handler())
// at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler builds the HTTP handler around a collection manager.
func NewHandler(manager *registry.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/diff", s.postDiff)
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.listCollections)
			r.Post("/", s.createCollection)
			r.Route("/{collectionID}", func(r chi.Router) {
				r.Get("/", s.getCollection)
				r.Put("/", s.putCollection)
				r.Delete("/", s.deleteCollection)
				r.Post("/ensure", s.ensureCollection)
				r.Get("/events", s.subscribeEvents)
			})
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DiffRequest is the body of POST /api/diff.
type DiffRequest struct {
	Old *domain.Snapshot `json:"old"`
	New *domain.Snapshot `json:"new"`
}

// ScriptResponse carries an edit script and its per-kind totals.
type ScriptResponse struct {
	Script  domain.Script         `json:"script"`
	Summary map[domain.OpKind]int `json:"summary,omitempty"`
}

// CreateCollectionRequest is the body of POST /api/collections. A missing ID
// gets generated.
type CreateCollectionRequest struct {
	ID       string           `json:"id,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

// EnsureRequest is the body of POST /api/collections/{id}/ensure.
type EnsureRequest struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "espalier-http",
		"version": espalier.Version,
	})
}

// postDiff computes the edit script between two snapshots without touching
// any stored collection.
func (s *Server) postDiff(w http.ResponseWriter, r *http.Request) {
	var body DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("diff: invalid request body", "err", err)
		return
	}
	for name, snap := range map[string]*domain.Snapshot{"old": body.Old, "new": body.New} {
		if snap == nil {
			continue
		}
		if err := snap.Validate(); err != nil {
			http.Error(w, fmt.Sprintf("Invalid %s snapshot: %v", name, err), http.StatusUnprocessableEntity)
			return
		}
	}

	script, err := espalier.DiffSnapshots(body.Old, body.New)
	if err != nil {
		http.Error(w, fmt.Sprintf("Diff error: %v", err), statusFromErr(err))
		s.logger.Error("diff failed", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, ScriptResponse{Script: orEmpty(script), Summary: script.Summary()})
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("list collections failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"collections": ids})
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var body CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("create collection: invalid request body", "err", err)
		return
	}

	id := body.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.manager.Create(r.Context(), id, body.Snapshot); err != nil {
		http.Error(w, fmt.Sprintf("Create error: %v", err), statusFromErr(err))
		s.logger.Warn("create collection failed", "collection_id", id, "err", err)
		return
	}

	s.logger.Info("collection created", "collection_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionID")
	snap, err := s.manager.Load(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), statusFromErr(err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// putCollection replaces the stored snapshot wholesale. Subscribers receive
// a reload rather than a fine-grained script.
func (s *Server) putCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionID")

	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := snap.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid snapshot: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if err := s.manager.Save(r.Context(), id, &snap); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), statusFromErr(err))
		s.logger.Error("save collection failed", "collection_id", id, "err", err)
		return
	}

	s.broadcastScript(id, domain.Script{{Kind: domain.OpReload}})
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionID")
	if err := s.manager.Delete(r.Context(), id); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), statusFromErr(err))
		return
	}
	s.logger.Info("collection deleted", "collection_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ensureCollection reconciles the stored collection toward the posted
// snapshot and broadcasts the applied script to SSE subscribers.
func (s *Server) ensureCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionID")

	var body EnsureRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	script, err := s.manager.Ensure(r.Context(), id, body.Snapshot)
	if err != nil {
		http.Error(w, fmt.Sprintf("Ensure error: %v", err), statusFromErr(err))
		s.logger.Warn("ensure failed", "collection_id", id, "err", err)
		return
	}

	if !script.IsEmpty() {
		s.broadcastScript(id, script)
	}
	s.logger.Debug("ensure applied", "collection_id", id, "ops", len(script))
	writeJSON(w, http.StatusOK, ScriptResponse{Script: orEmpty(script), Summary: script.Summary()})
}

func (s *Server) broadcastScript(id string, script domain.Script) {
	payload, err := json.Marshal(script)
	if err != nil {
		s.logger.Error("failed to marshal script for broadcast", "collection_id", id, "err", err)
		return
	}
	s.streams.Broadcast(id, string(payload))
}

// subscribeEvents streams applied edit scripts for one collection as SSE.
// With ?structural=1 content-only scripts are filtered out.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "collectionID")
	structuralOnly, _ := strconv.ParseBool(r.URL.Query().Get("structural"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	s.logger.Info("sse client subscribed", "collection_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "collection_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if structuralOnly {
				var script domain.Script
				if err := json.Unmarshal([]byte(msg), &script); err == nil && script.StructuralCount() == 0 {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager handles active SSE connections per collection ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a listener for one collection and returns its channel
// together with the cancel function that must be called on disconnect.
func (sm *StreamManager) Subscribe(id string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[id]; !ok {
		sm.subscribers[id] = make(map[chan<- string]struct{})
	}
	sm.subscribers[id][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[id]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, id)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of the collection. Slow clients
// whose buffer is full miss the message instead of blocking the writer.
func (sm *StreamManager) Broadcast(id string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[id] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orEmpty(script domain.Script) domain.Script {
	if script == nil {
		return domain.Script{}
	}
	return script
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrCollectionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
