package model

// TrackKind identifies which timeline track an asset or segment belongs to.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// Valid reports whether k is one of the known track kinds.
func (k TrackKind) Valid() bool {
	return k == TrackVideo || k == TrackAudio
}

// Asset is a media file registered with a project.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MediaHandle string    `json:"mediaHandle"`        // URL the player loads, e.g. /media/assets/<object>
	Kind        TrackKind `json:"kind"`               // Track the asset's segments land on
	Duration    *float64  `json:"duration,omitempty"` // Seconds; nil until the player reports metadata
}

// DurationKnown reports whether the intrinsic media duration has been set.
func (a Asset) DurationKnown() bool {
	return a.Duration != nil
}
