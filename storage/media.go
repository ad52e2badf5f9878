package storage

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cutroom/model"
)

// MediaContentType maps a media filename to its MIME type by extension.
// Unknown extensions fall back to application/octet-stream.
func MediaContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// KindForFilename classifies a media file onto a timeline track. Files
// that are neither video nor audio report false.
func KindForFilename(name string) (model.TrackKind, bool) {
	ct := MediaContentType(name)
	switch {
	case strings.HasPrefix(ct, "video/"):
		return model.TrackVideo, true
	case strings.HasPrefix(ct, "audio/"):
		return model.TrackAudio, true
	default:
		return "", false
	}
}

// NewObjectName builds a unique bucket key for an uploaded file, keeping
// the original extension.
func NewObjectName(filename string) string {
	return "assets/" + uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}
