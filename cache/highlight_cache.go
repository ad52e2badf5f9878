package cache

import (
	"context"
	"encoding/json"
	"time"

	"cutroom/logger"
	"cutroom/model"

	"github.com/redis/go-redis/v9"
)

const (
	highlightKeyPrefix = "autocut:ranges:"

	// Detector results are kept for a day; re-running AutoCut on the same
	// asset within that window skips the detector.
	highlightTTL = 24 * time.Hour
)

// HighlightCache stores detector results in Redis, keyed by asset id.
// Without a connected client it degrades to a pass-through: Get misses
// and Set does nothing, so AutoCut keeps working uncached.
type HighlightCache struct{}

// NewHighlightCache returns a cache over the global Redis client.
func NewHighlightCache() *HighlightCache {
	return &HighlightCache{}
}

func highlightKey(assetID string) string {
	return highlightKeyPrefix + assetID
}

// Get returns the cached ranges for an asset. Read failures count as
// misses so a flaky Redis never blocks a detector run.
func (c *HighlightCache) Get(ctx context.Context, assetID string) ([]model.HighlightRange, bool) {
	if RedisClient == nil {
		return nil, false
	}

	data, err := RedisClient.Get(ctx, highlightKey(assetID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("highlight cache read failed",
				logger.String("asset", assetID),
				logger.ErrorField(err))
		}
		return nil, false
	}

	var ranges []model.HighlightRange
	if err := json.Unmarshal(data, &ranges); err != nil {
		logger.Warn("highlight cache entry is corrupt",
			logger.String("asset", assetID),
			logger.ErrorField(err))
		return nil, false
	}

	logger.Debug("highlight cache hit",
		logger.String("asset", assetID),
		logger.Int("ranges", len(ranges)))
	return ranges, true
}

// Set stores detector results for an asset.
func (c *HighlightCache) Set(ctx context.Context, assetID string, ranges []model.HighlightRange) {
	if RedisClient == nil {
		return
	}

	data, err := json.Marshal(ranges)
	if err != nil {
		logger.Error("failed to marshal highlight ranges",
			logger.String("asset", assetID),
			logger.ErrorField(err))
		return
	}

	if err := RedisClient.Set(ctx, highlightKey(assetID), data, highlightTTL).Err(); err != nil {
		logger.Warn("highlight cache write failed",
			logger.String("asset", assetID),
			logger.ErrorField(err))
		return
	}

	logger.Debug("highlight ranges cached",
		logger.String("asset", assetID),
		logger.Int("ranges", len(ranges)))
}
