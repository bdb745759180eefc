package slskd

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Search submits a search for the given text and returns the daemon's
// descriptor for it (no results yet). id identifies the search for later
// polling; when it is not a valid uuid a fresh one is generated silently,
// so passing "" always works.
func (c *Client) Search(text, id string, opts SearchOptions) (Search, error) {
	req := searchRequest{
		ID:            normalizeSearchID(id),
		SearchText:    text,
		SearchOptions: opts,
	}
	var out Search
	err := c.doJSON(http.MethodPost, "/searches", nil, req, &out)
	return out, err
}

// Searches lists the daemon's active and completed searches.
func (c *Client) Searches() ([]Search, error) {
	var out []Search
	err := c.doJSON(http.MethodGet, "/searches", nil, nil, &out)
	return out, err
}

// State fetches the descriptor of the search with the given id, optionally
// with its responses embedded.
func (c *Client) State(id string, includeResponses bool) (Search, error) {
	query := url.Values{
		"includeResponses": {strconv.FormatBool(includeResponses)},
	}
	var out Search
	err := c.doJSON(http.MethodGet, "/searches/"+id, query, nil, &out)
	return out, err
}

// Stop asks the daemon to stop an in-progress search. Reports success as a
// plain flag; transport failures count as false.
func (c *Client) Stop(id string) bool {
	return c.doOK(http.MethodPut, "/searches/"+id)
}

// Delete removes the search and its results from the daemon.
func (c *Client) Delete(id string) bool {
	return c.doOK(http.MethodDelete, "/searches/"+id)
}

// Responses fetches the responses received so far for the search with the
// given id.
func (c *Client) Responses(id string) ([]SearchResponse, error) {
	var out []SearchResponse
	err := c.doJSON(http.MethodGet, "/searches/"+id+"/responses", nil, nil, &out)
	return out, err
}

// normalizeSearchID returns the canonical form of id when it parses as a
// uuid and a freshly generated uuid otherwise. Never fails.
func normalizeSearchID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return uuid.NewString()
}
