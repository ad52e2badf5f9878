package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"cutroom/core/timeline"
	"cutroom/model"

	"github.com/gorilla/mux"
)

// ListSegmentsHandler returns a track's segments. Pass ?order=timeline
// for playback order instead of insertion order.
func (h *APIHandler) ListSegmentsHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := trackFromVars(r)
	if !ok {
		http.Error(w, "Invalid track", http.StatusBadRequest)
		return
	}
	sess := h.sessionFor(r)

	var segments []model.Segment
	var err error
	if r.URL.Query().Get("order") == "timeline" {
		segments, err = sess.OrderedSegments(track)
	} else {
		segments, err = sess.Segments(track)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segments":   segments,
		"selectedId": sess.Stores[track].SelectedID(),
	})
}

// AddSegmentHandler creates a segment on a track.
func (h *APIHandler) AddSegmentHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := trackFromVars(r)
	if !ok {
		http.Error(w, "Invalid track", http.StatusBadRequest)
		return
	}

	var req struct {
		AssetID       string  `json:"assetId"`
		SourceStart   float64 `json:"sourceStart"`
		Duration      float64 `json:"duration"`
		TimelineStart float64 `json:"timelineStart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	seg, err := h.sessionFor(r).AddSegment(track, timeline.NewSegment{
		AssetID:       req.AssetID,
		SourceStart:   req.SourceStart,
		Duration:      req.Duration,
		TimelineStart: req.TimelineStart,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, seg)
}

// UpdateSegmentHandler merges a partial update into a segment. Values
// are applied as sent; the editor trusts manual edits.
func (h *APIHandler) UpdateSegmentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetID       *string  `json:"assetId"`
		SourceStart   *float64 `json:"sourceStart"`
		Duration      *float64 `json:"duration"`
		TimelineStart *float64 `json:"timelineStart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	segmentID := mux.Vars(r)["segment_id"]
	err := h.sessionFor(r).UpdateSegment(segmentID, model.SegmentPatch{
		AssetID:       req.AssetID,
		SourceStart:   req.SourceStart,
		Duration:      req.Duration,
		TimelineStart: req.TimelineStart,
	})
	if err != nil {
		if errors.Is(err, timeline.ErrSegmentNotFound) {
			http.Error(w, "Segment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update segment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Segment updated"})
}

// DeleteSegmentHandler removes a segment from whichever track holds it.
func (h *APIHandler) DeleteSegmentHandler(w http.ResponseWriter, r *http.Request) {
	segmentID := mux.Vars(r)["segment_id"]
	if err := h.sessionFor(r).DeleteSegment(segmentID); err != nil {
		if errors.Is(err, timeline.ErrSegmentNotFound) {
			http.Error(w, "Segment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete segment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SelectSegmentHandler sets a track's selection; an empty segmentId
// clears it.
func (h *APIHandler) SelectSegmentHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := trackFromVars(r)
	if !ok {
		http.Error(w, "Invalid track", http.StatusBadRequest)
		return
	}

	var req struct {
		SegmentID string `json:"segmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.sessionFor(r).SelectSegment(track, req.SegmentID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Selection updated"})
}
