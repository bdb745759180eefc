package slskd

import "strings"

// FilterConfig holds client-side criteria applied to search responses after
// retrieval. The zero value of every field disables that criterion, so
// MinSize: 0 means the same as leaving MinSize unset. That also means a
// bound of zero cannot be expressed; this matches how the daemon's other
// clients have always treated these filters and is kept for compatibility.
type FilterConfig struct {
	MinBitRate     int   // kbps, inclusive lower bound per file
	MinSize        int64 // bytes, inclusive lower bound per file
	MinLength      int   // seconds, inclusive lower bound per file
	MaxQueueLength int   // inclusive upper bound on the peer's queue length
	MinUploadSpeed int   // bytes/s, inclusive lower bound on the peer's upload speed
	HasFreeSlot    bool  // require the peer to have a free upload slot
	// FileExtensions lists allowed extensions, matched against the part of
	// the filename after the last dot, case-insensitively and without a
	// leading dot. A filename with no dot never matches.
	FileExtensions []string
}

// FilterResponses returns the responses satisfying every active criterion
// in cfg. Kept responses are copies with Files pruned to the matching files
// and FileCount recomputed; responses left with no matching files are
// dropped entirely. Input order is preserved at both levels and the inputs
// are never modified.
func FilterResponses(responses []SearchResponse, cfg FilterConfig) []SearchResponse {
	exts := allowedExtensions(cfg.FileExtensions)

	filtered := make([]SearchResponse, 0, len(responses))
	for _, response := range responses {
		if cfg.HasFreeSlot && !response.HasFreeUploadSlot {
			continue
		}
		if cfg.MaxQueueLength != 0 && response.QueueLength > cfg.MaxQueueLength {
			continue
		}
		if cfg.MinUploadSpeed != 0 && response.UploadSpeed < cfg.MinUploadSpeed {
			continue
		}

		var files []File
		for _, file := range response.Files {
			if matchesFileFilters(file, cfg, exts) {
				files = append(files, file)
			}
		}
		if len(files) == 0 {
			continue
		}

		// response is a copy, so this never touches the caller's slice
		response.Files = files
		response.FileCount = len(files)
		filtered = append(filtered, response)
	}
	return filtered
}

func matchesFileFilters(file File, cfg FilterConfig, exts map[string]bool) bool {
	if cfg.MinBitRate != 0 && file.BitRate < cfg.MinBitRate {
		return false
	}
	if cfg.MinSize != 0 && file.Size < cfg.MinSize {
		return false
	}
	if cfg.MinLength != 0 && file.Length < cfg.MinLength {
		return false
	}
	if exts != nil {
		dot := strings.LastIndex(file.Filename, ".")
		if dot < 0 {
			return false
		}
		if !exts[strings.ToLower(file.Filename[dot+1:])] {
			return false
		}
	}
	return true
}

// allowedExtensions builds a lookup set from the configured extensions,
// lower-cased and without a leading dot. Returns nil when the list is
// empty, meaning no extension constraint.
func allowedExtensions(list []string) map[string]bool {
	if len(list) == 0 {
		return nil
	}
	set := make(map[string]bool, len(list))
	for _, ext := range list {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return set
}
