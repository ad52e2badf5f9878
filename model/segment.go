package model

// Segment is a clip placed on a timeline track. SourceStart and Duration
// select the region of the asset's media to play; TimelineStart positions
// the clip on the track. All values are in seconds.
type Segment struct {
	ID            string  `json:"id"`
	AssetID       string  `json:"assetId"`
	SourceStart   float64 `json:"sourceStart"`
	Duration      float64 `json:"duration"`
	TimelineStart float64 `json:"timelineStart"`
}

// SourceEnd returns the end of the played region within the asset's media.
func (s Segment) SourceEnd() float64 {
	return s.SourceStart + s.Duration
}

// TimelineEnd returns the end of the clip on the timeline.
func (s Segment) TimelineEnd() float64 {
	return s.TimelineStart + s.Duration
}

// SegmentPatch is a partial update for a segment. Nil fields are left
// untouched. Values are applied as given; gesture controllers clamp before
// building a patch, manual edits pass through unchanged.
type SegmentPatch struct {
	AssetID       *string  `json:"assetId,omitempty"`
	SourceStart   *float64 `json:"sourceStart,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	TimelineStart *float64 `json:"timelineStart,omitempty"`
}

// Apply merges the patch into seg.
func (p SegmentPatch) Apply(seg *Segment) {
	if p.AssetID != nil {
		seg.AssetID = *p.AssetID
	}
	if p.SourceStart != nil {
		seg.SourceStart = *p.SourceStart
	}
	if p.Duration != nil {
		seg.Duration = *p.Duration
	}
	if p.TimelineStart != nil {
		seg.TimelineStart = *p.TimelineStart
	}
}
