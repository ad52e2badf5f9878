package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cutroom/core/asset"
	"cutroom/logger"
	"cutroom/storage"

	"github.com/gorilla/mux"
)

// UploadAssetHandler ingests one media file into a project.
// Expected multipart form fields:
// - mediaFile: the media file (MP4, MP3, WAV, ...)
// - name: display name (optional, defaults to the uploaded filename)
func (h *APIHandler) UploadAssetHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max memory
		http.Error(w, fmt.Sprintf("Failed to parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("mediaFile")
	if err != nil {
		http.Error(w, "Missing 'mediaFile' in form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind, ok := storage.KindForFilename(header.Filename)
	if !ok {
		http.Error(w, fmt.Sprintf("Unsupported media type: %s", header.Filename), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.MediaContentType(header.Filename)
	}

	objectName := storage.NewObjectName(header.Filename)
	if err := storage.UploadMedia(r.Context(), objectName, file, header.Size, contentType); err != nil {
		logger.Error("media upload failed",
			logger.String("object", objectName),
			logger.ErrorField(err))
		http.Error(w, "Failed to store media file", http.StatusServiceUnavailable)
		return
	}

	sess := h.sessionFor(r)
	a := sess.RegisterAsset(name, objectName, kind)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Asset uploaded successfully",
		"asset":   a,
	})
}

// ListAssetsHandler returns a project's assets in registration order.
func (h *APIHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionFor(r).Assets())
}

// ReportDurationHandler records a media duration probed by a client.
func (h *APIHandler) ReportDurationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration float64 `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assetID := mux.Vars(r)["asset_id"]
	if err := h.sessionFor(r).SetAssetDuration(assetID, req.Duration); err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to record duration", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Duration recorded"})
}
