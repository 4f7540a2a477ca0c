// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpapi exposes searches, saved items and metrics over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pdiddy/price-scout/internal/favorites"
	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/pkg/types"
)

// Searcher runs searches and reports the latest one.
type Searcher interface {
	Search(ctx context.Context, req pipeline.Request) (pipeline.Snapshot, error)
	Status() pipeline.Snapshot
}

// Favorites is the saved-items store.
type Favorites interface {
	Save(ctx context.Context, item types.DisplayItem) error
	Remove(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]favorites.Saved, error)
}

// Handlers holds the dependencies of the HTTP endpoints.
type Handlers struct {
	searcher  Searcher
	favorites Favorites
}

// NewRouter wires every endpoint. metrics may be nil to omit /metrics.
func NewRouter(s Searcher, f Favorites, metrics http.Handler) *mux.Router {
	h := &Handlers{searcher: s, favorites: f}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	router.HandleFunc("/search/status", h.Status).Methods(http.MethodGet)
	router.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	router.HandleFunc("/favorites", h.SaveFavorite).Methods(http.MethodPost)
	router.HandleFunc("/favorites/{id}", h.RemoveFavorite).Methods(http.MethodDelete)
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	router.Use(logRequests)
	return router
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search runs one search to completion and returns its final snapshot.
// The search is not cancelled if the client goes away.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.searcher.Search(context.WithoutCancel(r.Context()), req)
	writeJSON(w, searchStatus(err), snap)
}

// searchStatus maps a search error onto an HTTP status.
func searchStatus(err error) int {
	var (
		vErr *pipeline.ValidationError
		rErr *pipeline.ResolutionError
		dErr *pipeline.DiscoveryError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &rErr), errors.As(err, &dErr):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Status returns the latest published snapshot, including the progress label
// of a running search.
func (h *Handlers) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.searcher.Status())
}

type favoritesResponse struct {
	Items []favorites.Saved `json:"items"`
	Total int               `json:"total"`
}

// ListFavorites returns saved items, most recent first.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	items, err := h.favorites.List(r.Context())
	if err != nil {
		slog.Error("listing favorites", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []favorites.Saved{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Items: items, Total: len(items)})
}

// SaveFavorite stores the DisplayItem in the request body.
func (h *Handlers) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	var item types.DisplayItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if item.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.favorites.Save(r.Context(), item); err != nil {
		slog.Error("saving favorite", "id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// RemoveFavorite deletes a saved item by ID.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := h.favorites.Remove(r.Context(), id)
	if err != nil {
		slog.Error("removing favorite", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "saved item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
