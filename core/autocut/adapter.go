// Package autocut turns detector-reported highlight ranges into timeline
// segments.
package autocut

import (
	"context"
	"errors"
	"fmt"

	"cutroom/core/asset"
	"cutroom/core/timeline"
	"cutroom/logger"
	"cutroom/model"
)

// ErrNoAssets is returned when a bulk run has nothing to work on. Callers
// surface it to the user instead of failing silently.
var ErrNoAssets = errors.New("no assets registered")

// Adapter applies highlight ranges as fresh segments on the owning
// asset's track. Each range becomes the clip's source window; the clip
// itself lands at timeline zero, ready to be dragged into place.
type Adapter struct {
	registry *asset.Registry
	stores   map[model.TrackKind]*timeline.Store
	detector Detector
	cache    RangeCache
}

// NewAdapter returns an adapter over the given registry and per-track
// stores. cache may be nil, which disables range caching.
func NewAdapter(registry *asset.Registry, stores map[model.TrackKind]*timeline.Store, detector Detector, cache RangeCache) *Adapter {
	return &Adapter{
		registry: registry,
		stores:   stores,
		detector: detector,
		cache:    cache,
	}
}

// Apply creates one segment per range on the asset's track in a single
// batch; the first created segment becomes the track's selection. An
// empty range set changes nothing.
func (a *Adapter) Apply(assetID string, ranges []model.HighlightRange) ([]model.Segment, error) {
	ast, ok := a.registry.Lookup(assetID)
	if !ok {
		return nil, asset.ErrAssetNotFound
	}
	if len(ranges) == 0 {
		return nil, nil
	}
	store, ok := a.stores[ast.Kind]
	if !ok {
		return nil, fmt.Errorf("no timeline store for track %q", ast.Kind)
	}

	created := store.AddBatch(rangeSegments(ast, ranges))
	logger.Info("applied highlight ranges",
		logger.String("asset", ast.ID),
		logger.String("track", string(ast.Kind)),
		logger.Int("segments", len(created)))
	return created, nil
}

// ApplyAll applies the same range set to every registered asset. Segments
// for assets sharing a track are gathered into one batch, so each track
// sees a single append and a single selection update. Returns ErrNoAssets
// when the registry is empty.
func (a *Adapter) ApplyAll(ranges []model.HighlightRange) (int, error) {
	assets := a.registry.List()
	if len(assets) == 0 {
		return 0, ErrNoAssets
	}
	if len(ranges) == 0 {
		return 0, nil
	}

	batches := make(map[model.TrackKind][]timeline.NewSegment)
	for _, ast := range assets {
		batches[ast.Kind] = append(batches[ast.Kind], rangeSegments(ast, ranges)...)
	}
	return a.applyBatches(batches), nil
}

// Run detects highlights for one asset and applies them. Cached ranges
// are served without calling the detector again.
func (a *Adapter) Run(ctx context.Context, assetID string) ([]model.Segment, error) {
	ast, ok := a.registry.Lookup(assetID)
	if !ok {
		return nil, asset.ErrAssetNotFound
	}
	ranges, err := a.rangesFor(ctx, ast)
	if err != nil {
		return nil, err
	}
	return a.Apply(assetID, ranges)
}

// RunAll detects highlights for every registered asset and applies them,
// one batch per track. Returns ErrNoAssets when the registry is empty.
func (a *Adapter) RunAll(ctx context.Context) (int, error) {
	assets := a.registry.List()
	if len(assets) == 0 {
		return 0, ErrNoAssets
	}

	batches := make(map[model.TrackKind][]timeline.NewSegment)
	for _, ast := range assets {
		ranges, err := a.rangesFor(ctx, ast)
		if err != nil {
			return 0, err
		}
		batches[ast.Kind] = append(batches[ast.Kind], rangeSegments(ast, ranges)...)
	}
	return a.applyBatches(batches), nil
}

// rangesFor consults the cache before the detector and fills it after a
// detector run.
func (a *Adapter) rangesFor(ctx context.Context, ast model.Asset) ([]model.HighlightRange, error) {
	if a.cache != nil {
		if ranges, ok := a.cache.Get(ctx, ast.ID); ok {
			logger.Debug("highlight ranges served from cache", logger.String("asset", ast.ID))
			return ranges, nil
		}
	}
	ranges, err := a.detector.Detect(ctx, ast)
	if err != nil {
		return nil, fmt.Errorf("detect highlights for asset %s: %w", ast.ID, err)
	}
	if a.cache != nil {
		a.cache.Set(ctx, ast.ID, ranges)
	}
	return ranges, nil
}

func (a *Adapter) applyBatches(batches map[model.TrackKind][]timeline.NewSegment) int {
	total := 0
	for kind, inputs := range batches {
		store, ok := a.stores[kind]
		if !ok {
			logger.Warn("no timeline store for track", logger.String("track", string(kind)))
			continue
		}
		created := store.AddBatch(inputs)
		total += len(created)
		logger.Info("applied highlight ranges",
			logger.String("track", string(kind)),
			logger.Int("segments", len(created)))
	}
	return total
}

func rangeSegments(ast model.Asset, ranges []model.HighlightRange) []timeline.NewSegment {
	inputs := make([]timeline.NewSegment, 0, len(ranges))
	for _, r := range ranges {
		inputs = append(inputs, timeline.NewSegment{
			AssetID:       ast.ID,
			SourceStart:   r.Start,
			Duration:      r.Length(),
			TimelineStart: 0,
		})
	}
	return inputs
}
