package gesture

import (
	"cutroom/core/timeline"
	"cutroom/model"
)

// Edge identifies which handle of a segment a resize gesture grabbed.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// DefaultMinSegmentSeconds is the smallest duration a resize can leave
// behind. Manual numeric edits are not subject to it.
const DefaultMinSegmentSeconds = 0.1

// AssetDurations reports the known intrinsic duration of an asset's media.
// Assets whose metadata has not arrived yet report false, which leaves the
// resize unbounded on the source side.
type AssetDurations interface {
	DurationOf(assetID string) (float64, bool)
}

// Resize trims a segment from either edge. Trimming the start edge shifts
// the source window and shrinks the duration by the same amount, so the
// segment keeps playing up to the same point in the asset; trimming the
// end edge only changes the duration. The timeline position is never
// touched by a resize.
type Resize struct {
	geom        *timeline.Geometry
	stores      []*timeline.Store
	assets      AssetDurations
	minDuration float64

	active           bool
	segmentID        string
	edge             Edge
	startX           float64
	startSourceStart float64
	startDuration    float64
}

// NewResize returns an idle resize controller. Non-positive minDuration
// falls back to DefaultMinSegmentSeconds.
func NewResize(geom *timeline.Geometry, assets AssetDurations, minDuration float64, stores ...*timeline.Store) *Resize {
	if minDuration <= 0 {
		minDuration = DefaultMinSegmentSeconds
	}
	return &Resize{geom: geom, assets: assets, minDuration: minDuration, stores: stores}
}

// Start arms the controller for one edge of the segment under the pointer.
// Returns false and stays idle for unknown segments or edges.
func (r *Resize) Start(segmentID string, edge Edge, pointerX float64) bool {
	r.End()
	if edge != EdgeStart && edge != EdgeEnd {
		return false
	}
	for _, store := range r.stores {
		if seg, ok := store.Get(segmentID); ok {
			r.active = true
			r.segmentID = segmentID
			r.edge = edge
			r.startX = pointerX
			r.startSourceStart = seg.SourceStart
			r.startDuration = seg.Duration
			return true
		}
	}
	return false
}

// Move recomputes the segment's source window for the current pointer
// position. Ignored while idle or when the segment has gone away.
func (r *Resize) Move(pointerX float64) {
	if !r.active {
		return
	}

	var seg model.Segment
	found := false
	for _, store := range r.stores {
		if s, ok := store.Get(r.segmentID); ok {
			seg = s
			found = true
			break
		}
	}
	if !found {
		return
	}

	delta := r.geom.PixelsToTime(pointerX - r.startX)

	var newSourceStart, newDuration float64
	switch r.edge {
	case EdgeStart:
		newSourceStart = r.startSourceStart + delta
		if newSourceStart < 0 {
			newSourceStart = 0
		}
		// Raw delta, not the clamped one: while the zero clamp is not
		// engaged this keeps the source end point fixed.
		newDuration = r.startDuration - delta
	case EdgeEnd:
		newSourceStart = seg.SourceStart
		newDuration = r.startDuration + delta
	default:
		return
	}

	if assetDur, ok := r.assets.DurationOf(seg.AssetID); ok {
		if r.edge == EdgeStart {
			maxStart := assetDur - r.minDuration
			if maxStart < 0 {
				maxStart = 0
			}
			if newSourceStart > maxStart {
				newSourceStart = maxStart
			}
		}
		if maxDuration := assetDur - newSourceStart; newDuration > maxDuration {
			newDuration = maxDuration
		}
	}
	// The floor is applied last and wins over the asset cap.
	if newDuration < r.minDuration {
		newDuration = r.minDuration
	}

	patch := model.SegmentPatch{Duration: &newDuration}
	if r.edge == EdgeStart {
		patch.SourceStart = &newSourceStart
	}
	for _, store := range r.stores {
		_ = store.Update(r.segmentID, patch)
	}
}

// End disarms the controller. Safe to call while idle.
func (r *Resize) End() {
	r.active = false
	r.segmentID = ""
	r.edge = ""
	r.startX = 0
	r.startSourceStart = 0
	r.startDuration = 0
}

// Active reports whether a resize is in progress.
func (r *Resize) Active() bool {
	return r.active
}

// SegmentID returns the resized segment's id, empty while idle.
func (r *Resize) SegmentID() string {
	return r.segmentID
}
