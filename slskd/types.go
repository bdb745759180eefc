package slskd

import "strings"

// SearchState mirrors the daemon's search lifecycle state. The daemon
// reports terminal states as flag combinations ("Completed, TimedOut"),
// so compare with Has rather than equality.
type SearchState string

const (
	SearchStateNone       SearchState = "None"
	SearchStateRequested  SearchState = "Requested"
	SearchStateInProgress SearchState = "InProgress"
	SearchStateCompleted  SearchState = "Completed"
	SearchStateTimedOut   SearchState = "TimedOut"
	SearchStateCancelled  SearchState = "Cancelled"
	SearchStateErrored    SearchState = "Errored"
)

// Has reports whether the state includes the given flag.
func (s SearchState) Has(flag SearchState) bool {
	return strings.Contains(string(s), string(flag))
}

// IsTerminal reports whether the search has finished for any reason.
func (s SearchState) IsTerminal() bool {
	return s.Has(SearchStateCompleted) || s.Has(SearchStateTimedOut) ||
		s.Has(SearchStateCancelled) || s.Has(SearchStateErrored)
}

// Search is the daemon-side descriptor of a submitted search.
type Search struct {
	ID              string           `json:"id"`
	SearchText      string           `json:"searchText"`
	Token           int              `json:"token"`
	State           SearchState      `json:"state"`
	IsComplete      bool             `json:"isComplete"`
	FileCount       int              `json:"fileCount"`
	LockedFileCount int              `json:"lockedFileCount"`
	ResponseCount   int              `json:"responseCount"`
	Responses       []SearchResponse `json:"responses,omitempty"`
}

// SearchResponse is one peer's reply to a search, listing offered files
// and peer-level transfer attributes.
type SearchResponse struct {
	Username          string `json:"username"`
	Token             int    `json:"token"`
	HasFreeUploadSlot bool   `json:"hasFreeUploadSlot"`
	QueueLength       int    `json:"queueLength"`
	UploadSpeed       int    `json:"uploadSpeed"`
	FileCount         int    `json:"fileCount"`
	Files             []File `json:"files"`
}

// File is one file offered by a peer. Numeric metadata fields the peer
// did not report decode as 0.
type File struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Extension  string `json:"extension,omitempty"`
	BitRate    int    `json:"bitRate,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
	BitDepth   int    `json:"bitDepth,omitempty"`
	Length     int    `json:"length,omitempty"`
	IsLocked   bool   `json:"isLocked,omitempty"`
}

// SearchOptions are the daemon-side search parameters sent when submitting
// a search. The zero value is not useful; start from DefaultSearchOptions.
type SearchOptions struct {
	FileLimit int `json:"fileLimit"`
	// FilterResponses asks the daemon to drop responses from unreachable
	// peers. Unrelated to the client-side FilterResponses in this package.
	FilterResponses          bool `json:"filterResponses"`
	MaximumPeerQueueLength   int  `json:"maximumPeerQueueLength"`
	MinimumPeerUploadSpeed   int  `json:"minimumPeerUploadSpeed"`
	MinimumResponseFileCount int  `json:"minimumResponseFileCount"`
	ResponseLimit            int  `json:"responseLimit"`
	SearchTimeout            int  `json:"searchTimeout"` // milliseconds
}

// DefaultSearchOptions returns the daemon's conventional search defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		FileLimit:                10000,
		FilterResponses:          true,
		MaximumPeerQueueLength:   1000000,
		MinimumPeerUploadSpeed:   0,
		MinimumResponseFileCount: 1,
		ResponseLimit:            100,
		SearchTimeout:            15000,
	}
}

// searchRequest is the POST /searches body.
type searchRequest struct {
	ID         string `json:"id"`
	SearchText string `json:"searchText"`
	SearchOptions
}
