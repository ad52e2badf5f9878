package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cutroom/core/asset"
	"cutroom/core/autocut"
	"cutroom/logger"
	"cutroom/model"

	"github.com/gorilla/mux"
)

// autoCutRequest optionally carries explicit ranges. Without them the
// detector decides where to cut.
type autoCutRequest struct {
	Ranges []model.HighlightRange `json:"ranges"`
}

func decodeAutoCutRequest(r *http.Request) (autoCutRequest, error) {
	var req autoCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		return req, err
	}
	return req, nil
}

// AutoCutAssetHandler cuts one asset into highlight segments.
func (h *APIHandler) AutoCutAssetHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAutoCutRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assetID := mux.Vars(r)["asset_id"]
	sess := h.sessionFor(r)

	var created []model.Segment
	if len(req.Ranges) > 0 {
		created, err = sess.ApplyHighlights(assetID, req.Ranges)
	} else {
		created, err = sess.RunAutoCut(r.Context(), assetID)
	}
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		logger.Error("autocut failed",
			logger.String("asset", assetID),
			logger.ErrorField(err))
		http.Error(w, "AutoCut failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"count":    len(created),
		"segments": created,
	})
}

// AutoCutAllHandler cuts every asset in the project.
func (h *APIHandler) AutoCutAllHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAutoCutRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := h.sessionFor(r)

	var total int
	if len(req.Ranges) > 0 {
		total, err = sess.ApplyHighlightsAll(req.Ranges)
	} else {
		total, err = sess.RunAutoCutAll(r.Context())
	}
	if err != nil {
		if errors.Is(err, autocut.ErrNoAssets) {
			sess.Notice("warning", "Add media to the project before running AutoCut.")
			http.Error(w, "No assets registered", http.StatusUnprocessableEntity)
			return
		}
		logger.Error("bulk autocut failed", logger.ErrorField(err))
		http.Error(w, "AutoCut failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"count": total})
}
