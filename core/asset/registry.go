// Package asset tracks the media files a project has ingested and answers
// the duration and source-handle queries the editing core needs.
package asset

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"cutroom/model"
)

// ErrAssetNotFound is returned when an operation references an asset id
// that was never registered.
var ErrAssetNotFound = errors.New("asset not found")

// Registry holds a project's assets in registration order.
type Registry struct {
	mu     sync.RWMutex
	assets []model.Asset
	index  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a media file. The duration stays unknown until the player
// reports the file's metadata.
func (r *Registry) Register(name, mediaHandle string, kind model.TrackKind) model.Asset {
	a := model.Asset{
		ID:          uuid.New().String(),
		Name:        name,
		MediaHandle: mediaHandle,
		Kind:        kind,
	}
	r.mu.Lock()
	r.index[a.ID] = len(r.assets)
	r.assets = append(r.assets, a)
	r.mu.Unlock()
	return a
}

// SetDuration records the media duration once the player reports it.
// Negative reports are clamped to zero; a later report overwrites an
// earlier one. The pointer is replaced, never written through, so copies
// handed out before the report keep their old view.
func (r *Registry) SetDuration(assetID string, seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.index[assetID]
	if !ok {
		return ErrAssetNotFound
	}
	d := seconds
	r.assets[idx].Duration = &d
	return nil
}

// Lookup returns a copy of the asset with the given id.
func (r *Registry) Lookup(assetID string) (model.Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.index[assetID]
	if !ok {
		return model.Asset{}, false
	}
	return r.assets[idx], true
}

// List returns the assets in registration order.
func (r *Registry) List() []model.Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

// DurationOf reports the known media duration of an asset. Unregistered
// assets and assets still waiting for metadata report false.
func (r *Registry) DurationOf(assetID string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.index[assetID]
	if !ok || r.assets[idx].Duration == nil {
		return 0, false
	}
	return *r.assets[idx].Duration, true
}

// SourceOf returns the media handle the player loads for an asset.
func (r *Registry) SourceOf(assetID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.index[assetID]
	if !ok {
		return "", false
	}
	return r.assets[idx].MediaHandle, true
}
