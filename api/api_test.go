package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slskseek/slskd"
)

// fakeDaemon stands in for slskd behind the proxy.
func fakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /searches", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID         string `json:"id"`
			SearchText string `json:"searchText"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(slskd.Search{ID: req.ID, SearchText: req.SearchText, State: slskd.SearchStateInProgress})
	})
	mux.HandleFunc("GET /searches", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]slskd.Search{{ID: "abc", State: slskd.SearchStateCompleted}})
	})
	mux.HandleFunc("GET /searches/abc", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(slskd.Search{ID: "abc", State: slskd.SearchStateCompleted, ResponseCount: 2})
	})
	mux.HandleFunc("PUT /searches/abc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /searches/abc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /searches/abc/responses", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]slskd.SearchResponse{
			{
				Username:          "alice",
				HasFreeUploadSlot: true,
				UploadSpeed:       500,
				Files: []slskd.File{
					{Filename: "a.flac", Size: 9000000, BitRate: 900},
					{Filename: "b.txt"},
				},
			},
			{
				Username:          "bob",
				HasFreeUploadSlot: false,
				UploadSpeed:       100,
				Files: []slskd.File{
					{Filename: "c.flac", Size: 2000000},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	daemon := fakeDaemon(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := slskd.NewClient(daemon.URL, "", logger)
	return NewHandler(client, nil, logger)
}

func TestSubmitSearchProxiesToDaemon(t *testing.T) {
	handler := newTestHandler(t)

	body := strings.NewReader(`{"searchText": "mozart requiem"}`)
	req := httptest.NewRequest(http.MethodPost, "/searches", body)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var search slskd.Search
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&search))
	assert.Equal(t, "mozart requiem", search.SearchText)
	assert.NotEmpty(t, search.ID)
}

func TestSubmitSearchRejectsMissingQuery(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/searches", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSearchState(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/searches/abc", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var search slskd.Search
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&search))
	assert.Equal(t, slskd.SearchStateCompleted, search.State)
	assert.Equal(t, 2, search.ResponseCount)
}

func TestStopAndDeleteSearch(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/searches/abc/stop", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/searches/abc", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// unknown search: daemon answers 404, proxy reports failure
	req = httptest.NewRequest(http.MethodDelete, "/searches/unknown", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetResponsesUnfiltered(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/searches/abc/responses", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var responses []slskd.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&responses))
	assert.Len(t, responses, 2)
}

func TestGetResponsesAppliesQueryFilters(t *testing.T) {
	handler := newTestHandler(t)

	url := "/searches/abc/responses?ext=flac&minSize=1000000&hasFreeSlot=true"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var responses []slskd.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&responses))
	require.Len(t, responses, 1)
	assert.Equal(t, "alice", responses[0].Username)
	require.Len(t, responses[0].Files, 1)
	assert.Equal(t, "a.flac", responses[0].Files[0].Filename)
	assert.Equal(t, 1, responses[0].FileCount)
}

func TestGetResponsesRejectsBadFilterValues(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/searches/abc/responses?minBitRate=high", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
