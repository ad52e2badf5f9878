// Package playback drives a track's media element through the track's
// segments in timeline order.
package playback

import (
	"sync"

	"cutroom/core/timeline"
	"cutroom/logger"
	"cutroom/model"
)

// State of a track's transport.
type State string

const (
	Stopped State = "stopped"
	Playing State = "playing"
)

// Engine is the remote media element the scheduler commands. Play may be
// rejected by the player (autoplay policy, pending load); the scheduler
// treats a rejection as benign and leaves retry to the next user gesture.
type Engine interface {
	SetSource(handle string)
	Seek(seconds float64)
	Play() error
	Pause()
}

// AssetSource resolves an asset id to the handle its media loads from.
type AssetSource interface {
	SourceOf(assetID string) (string, bool)
}

// Scheduler walks one track's segments. While playing it follows the
// store's selection: the current segment finishing selects its successor,
// which re-aims the engine; an external selection change re-aims it the
// same way; a cleared selection stops the walk. The scheduler never
// mutates segments, only the selection.
//
// The scheduler's own lock is never held across store or engine calls.
// Store listeners run synchronously on the mutating goroutine, so holding
// it would deadlock the advance path.
type Scheduler struct {
	track  model.TrackKind
	store  *timeline.Store
	assets AssetSource
	engine Engine

	mu           sync.Mutex
	state        State
	currentID    string
	currentAsset string
}

// NewScheduler returns a stopped scheduler subscribed to the store.
func NewScheduler(track model.TrackKind, store *timeline.Store, assets AssetSource, engine Engine) *Scheduler {
	s := &Scheduler{
		track:  track,
		store:  store,
		assets: assets,
		engine: engine,
		state:  Stopped,
	}
	store.Subscribe(s.onStoreEvent)
	return s
}

// Track returns the track this scheduler drives.
func (s *Scheduler) Track() model.TrackKind {
	return s.track
}

// State returns the transport state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentSegmentID returns the segment being played, empty when stopped.
func (s *Scheduler) CurrentSegmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Toggle flips the transport. Starting with no selection picks the first
// segment in timeline order; toggling an empty track is a no-op. Stopping
// pauses the engine but keeps the track's selection.
func (s *Scheduler) Toggle() {
	s.mu.Lock()
	if s.state == Playing {
		s.state = Stopped
		s.currentID = ""
		s.mu.Unlock()
		s.engine.Pause()
		logger.Info("playback stopped", logger.String("track", string(s.track)))
		return
	}
	s.mu.Unlock()

	sel := s.store.Selected()
	if sel == nil {
		ordered := s.store.Ordered()
		if len(ordered) == 0 {
			return
		}
		// Fires a select event, which is ignored while still stopped.
		s.store.Select(ordered[0].ID)
		sel = s.store.Selected()
		if sel == nil {
			return
		}
	}

	s.mu.Lock()
	s.state = Playing
	s.currentID = sel.ID
	s.mu.Unlock()

	logger.Info("playback started",
		logger.String("track", string(s.track)),
		logger.String("segment", sel.ID))
	s.playSegment(*sel)
}

// OnProgress advances the walk when the engine's position passes the end
// of the current segment's source window. The comparison always runs
// against the currently selected segment, so a boundary report delivered
// twice advances only once.
func (s *Scheduler) OnProgress(position float64) {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return
	}
	currentID := s.currentID
	s.mu.Unlock()

	if currentID == "" {
		return
	}
	current, ok := s.store.Get(currentID)
	if !ok {
		return
	}
	if position < current.SourceEnd() {
		return
	}

	next := s.store.Next(currentID)
	if next == nil {
		s.mu.Lock()
		s.state = Stopped
		s.currentID = ""
		s.mu.Unlock()
		s.engine.Pause()
		logger.Info("end of track reached", logger.String("track", string(s.track)))
		return
	}

	logger.Debug("advancing to next segment",
		logger.String("track", string(s.track)),
		logger.String("from", currentID),
		logger.String("to", next.ID))
	// Selecting the successor re-aims the engine via onStoreEvent.
	s.store.Select(next.ID)
}

// onStoreEvent follows selection changes while playing. It runs
// synchronously on the mutating goroutine, after the store released its
// lock.
func (s *Scheduler) onStoreEvent(ev timeline.Event) {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return
	}
	if ev.Selected == s.currentID {
		s.mu.Unlock()
		return
	}
	if ev.Selected == "" {
		s.state = Stopped
		s.currentID = ""
		s.mu.Unlock()
		s.engine.Pause()
		logger.Info("selection cleared, playback stopped", logger.String("track", string(s.track)))
		return
	}
	s.currentID = ev.Selected
	s.mu.Unlock()

	if seg, ok := s.store.Get(ev.Selected); ok {
		s.playSegment(seg)
	}
}

// playSegment aims the engine at seg and starts it. Called without the
// scheduler lock held. The source is swapped only when the asset changed
// since the last played segment.
func (s *Scheduler) playSegment(seg model.Segment) {
	handle, ok := s.assets.SourceOf(seg.AssetID)
	if !ok {
		logger.Warn("segment references unknown asset",
			logger.String("track", string(s.track)),
			logger.String("segment", seg.ID),
			logger.String("asset", seg.AssetID))
		return
	}

	s.mu.Lock()
	swap := s.currentAsset != seg.AssetID
	s.currentAsset = seg.AssetID
	s.mu.Unlock()

	if swap {
		s.engine.SetSource(handle)
	}
	s.engine.Seek(seg.SourceStart)
	if err := s.engine.Play(); err != nil {
		logger.Warn("play rejected by player",
			logger.String("track", string(s.track)),
			logger.String("segment", seg.ID),
			logger.ErrorField(err))
	}
}
