package server

import (
	"net/http"
	"strings"

	"cutroom/logger"
	"cutroom/storage"
)

// MediaHandler streams stored media straight out of MinIO. ServeContent
// gives the browser players the range support they need to scrub.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	objectName := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(h.cfg.MediaBaseURL, "/")+"/")
	if objectName == "" {
		http.Error(w, "Object name is required", http.StatusBadRequest)
		return
	}

	object, stat, err := storage.OpenMedia(r.Context(), objectName)
	if err != nil {
		logger.Debug("media object not found",
			logger.String("object", objectName),
			logger.ErrorField(err))
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", storage.MediaContentType(objectName))
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	http.ServeContent(w, r, objectName, stat.LastModified, object)
}
