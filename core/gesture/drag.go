// Package gesture implements the pointer-driven edit controllers. Each
// controller is a small state machine that is idle until a pointer press
// arms it, converts pointer movement into segment patches while armed, and
// disarms on release. Controllers are driven from the session's dispatch
// loop, one event at a time, so they hold no locks of their own.
package gesture

import (
	"cutroom/core/timeline"
	"cutroom/model"
)

// Drag moves a segment horizontally along its track. The segment's new
// timeline start is derived from the pointer's total horizontal travel
// since the press, never from per-event deltas, so a missed move event
// cannot accumulate drift.
type Drag struct {
	geom   *timeline.Geometry
	stores []*timeline.Store

	active             bool
	segmentID          string
	startX             float64
	startTimelineStart float64
}

// NewDrag returns an idle drag controller operating on the given stores.
func NewDrag(geom *timeline.Geometry, stores ...*timeline.Store) *Drag {
	return &Drag{geom: geom, stores: stores}
}

// Start arms the controller for the segment under the pointer. Returns
// false and stays idle when no store contains the segment. A press while
// armed abandons the previous gesture.
func (d *Drag) Start(segmentID string, pointerX float64) bool {
	d.End()
	for _, store := range d.stores {
		if seg, ok := store.Get(segmentID); ok {
			d.active = true
			d.segmentID = segmentID
			d.startX = pointerX
			d.startTimelineStart = seg.TimelineStart
			return true
		}
	}
	return false
}

// Move repositions the dragged segment for the current pointer position.
// Ignored while idle. The new start is clamped at zero; the segment never
// leaves its track.
func (d *Drag) Move(pointerX float64) {
	if !d.active {
		return
	}
	dx := pointerX - d.startX
	ts := d.startTimelineStart + d.geom.PixelsToTime(dx)
	if ts < 0 {
		ts = 0
	}
	patch := model.SegmentPatch{TimelineStart: &ts}
	// The segment lives in exactly one store; stores without the id
	// report a miss, which also covers deletion mid-gesture.
	for _, store := range d.stores {
		_ = store.Update(d.segmentID, patch)
	}
}

// End disarms the controller. Safe to call while idle; releases anywhere
// on the page funnel here.
func (d *Drag) End() {
	d.active = false
	d.segmentID = ""
	d.startX = 0
	d.startTimelineStart = 0
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// SegmentID returns the dragged segment's id, empty while idle.
func (d *Drag) SegmentID() string {
	return d.segmentID
}
