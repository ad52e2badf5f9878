package model

// HighlightRange is a detector-reported interval within an asset's media,
// in seconds from the start of the file.
type HighlightRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns the span of the range in seconds.
func (r HighlightRange) Length() float64 {
	return r.End - r.Start
}
