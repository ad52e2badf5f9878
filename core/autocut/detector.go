package autocut

import (
	"context"

	"cutroom/model"
)

// Detector finds highlight-worthy ranges in an asset's media, in seconds
// from the start of the file.
type Detector interface {
	Detect(ctx context.Context, a model.Asset) ([]model.HighlightRange, error)
}

// RangeCache remembers detector results per asset so repeated runs skip
// the detector. Implementations tolerate a dead backend: Get reports a
// miss and Set does nothing.
type RangeCache interface {
	Get(ctx context.Context, assetID string) ([]model.HighlightRange, bool)
	Set(ctx context.Context, assetID string, ranges []model.HighlightRange)
}

// StubDetector stands in for the real highlight service until one is
// wired up. It reports the same three ranges for every asset.
type StubDetector struct{}

// Detect implements Detector.
func (StubDetector) Detect(_ context.Context, _ model.Asset) ([]model.HighlightRange, error) {
	return []model.HighlightRange{
		{Start: 2, End: 4},
		{Start: 6, End: 7},
		{Start: 9, End: 10},
	}, nil
}
