package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// ResultRegistry holds the results of completed backtest runs, keyed by
// run ID, for retrieval through the HTTP API while a process is alive.
type ResultRegistry struct {
	mu      sync.RWMutex
	results map[string]*engine.Result
}

// NewResultRegistry creates an empty registry.
func NewResultRegistry() *ResultRegistry {
	return &ResultRegistry{results: make(map[string]*engine.Result)}
}

// Put records a completed run's result.
func (r *ResultRegistry) Put(result *engine.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.RunID] = result
}

// Get retrieves a run's result by ID.
func (r *ResultRegistry) Get(runID string) (*engine.Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[runID]
	return result, ok
}

// ResultsHandler serves a single run's result as JSON.
type ResultsHandler struct {
	registry *ResultRegistry
	logger   *zap.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(registry *ResultRegistry, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{registry: registry, logger: logger}
}

// Handle serves GET /api/run/{id}/results.
func (h *ResultsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	result, ok := h.registry.Get(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("results-handler-encode-failed", zap.Error(err))
	}
}
