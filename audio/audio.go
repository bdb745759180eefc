package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.senan.xyz/taglib"
)

var validExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".wma":  true,
}

// TrackInfo contains local audio file metadata.
type TrackInfo struct {
	Path            string
	Extension       string // without the leading dot
	Size            int64
	BitRate         int // kbps
	SampleRate      int // Hz
	DurationSeconds int
}

// ReadTrackInfo extracts audio file metadata using taglib.
func ReadTrackInfo(path string) (TrackInfo, error) {
	info := TrackInfo{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return info, fmt.Errorf("file does not exist: %v", err)
		}
		return info, fmt.Errorf("failed to get file stats: %v", err)
	}
	if !stat.Mode().IsRegular() {
		return info, fmt.Errorf("path is not a regular file: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !validExts[ext] {
		return info, fmt.Errorf("file is not a supported audio format: %s", ext)
	}

	info.Extension = strings.TrimPrefix(ext, ".")
	info.Size = stat.Size()

	props, err := taglib.ReadProperties(path)
	if err != nil {
		return info, fmt.Errorf("failed to read properties: %v", err)
	}

	info.BitRate = int(props.Bitrate)
	info.SampleRate = int(props.SampleRate)
	info.DurationSeconds = int(props.Length.Seconds())

	return info, nil
}

// SearchQuery derives a search query from a track's filename: the base name
// without its extension, with common separator characters flattened to
// spaces.
func SearchQuery(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}
