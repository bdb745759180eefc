package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"slskseek/cache"
	"slskseek/slskd"
)

// Handler exposes the slskd search surface over HTTP, with client-side
// response filtering folded into the responses endpoint.
type Handler struct {
	client *slskd.Client
	cache  *cache.ResponseCache // optional
	logger *slog.Logger
}

func NewHandler(client *slskd.Client, responseCache *cache.ResponseCache, logger *slog.Logger) *Handler {
	return &Handler{client: client, cache: responseCache, logger: logger}
}

// Routes builds the router for the search proxy.
func (h *Handler) Routes() *chi.Mux {
	mux := chi.NewRouter()
	mux.Post("/searches", h.SubmitSearch)
	mux.Get("/searches", h.ListSearches)
	mux.Get("/searches/{id}", h.GetSearch)
	mux.Put("/searches/{id}/stop", h.StopSearch)
	mux.Delete("/searches/{id}", h.DeleteSearch)
	mux.Get("/searches/{id}/responses", h.GetResponses)
	return mux
}

func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"` // Optional
		SearchText string `json:"searchText"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SearchText == "" {
		http.Error(w, "Missing searchText field", http.StatusBadRequest)
		return
	}

	search, err := h.client.Search(req.SearchText, req.ID, slskd.DefaultSearchOptions())
	if err != nil {
		h.logger.Error("search submission failed", "query", req.SearchText, "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(search)
}

func (h *Handler) ListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := h.client.Searches()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(searches)
}

func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	includeResponses := r.URL.Query().Get("includeResponses") == "true"

	search, err := h.client.State(id, includeResponses)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(search)
}

func (h *Handler) StopSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.client.Stop(id) {
		http.Error(w, "Failed to stop search", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Search stopped"})
}

func (h *Handler) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.client.Delete(id) {
		http.Error(w, "Failed to delete search", http.StatusBadGateway)
		return
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context(), id); err != nil {
			h.logger.Warn("cache invalidation failed", "id", id, "err", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Search deleted"})
}

// GetResponses retrieves the search's responses (through the cache when one
// is configured) and applies the filter criteria from the query string.
func (h *Handler) GetResponses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	responses, ok := h.cachedResponses(r, id)
	if !ok {
		responses, err = h.client.Responses(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if h.cache != nil {
			if err := h.cache.Set(r.Context(), id, responses); err != nil {
				h.logger.Warn("caching responses failed", "id", id, "err", err)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(slskd.FilterResponses(responses, cfg))
}

func (h *Handler) cachedResponses(r *http.Request, id string) ([]slskd.SearchResponse, bool) {
	if h.cache == nil {
		return nil, false
	}
	responses, ok, err := h.cache.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("cache read failed", "id", id, "err", err)
		return nil, false
	}
	return responses, ok
}

// filterFromQuery decodes a FilterConfig from query parameters: minBitRate,
// minSize, minLength, maxQueueLength, minUploadSpeed, hasFreeSlot, and a
// repeatable (or comma-separated) ext parameter.
func filterFromQuery(r *http.Request) (slskd.FilterConfig, error) {
	var cfg slskd.FilterConfig
	q := r.URL.Query()

	ints := []struct {
		key  string
		dest *int
	}{
		{"minBitRate", &cfg.MinBitRate},
		{"minLength", &cfg.MinLength},
		{"maxQueueLength", &cfg.MaxQueueLength},
		{"minUploadSpeed", &cfg.MinUploadSpeed},
	}
	for _, p := range ints {
		val := q.Get(p.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q", p.key, val)
		}
		*p.dest = n
	}

	if val := q.Get("minSize"); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid minSize: %q", val)
		}
		cfg.MinSize = n
	}

	cfg.HasFreeSlot = q.Get("hasFreeSlot") == "true"

	for _, raw := range q["ext"] {
		for _, ext := range strings.Split(raw, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				cfg.FileExtensions = append(cfg.FileExtensions, ext)
			}
		}
	}

	return cfg, nil
}
