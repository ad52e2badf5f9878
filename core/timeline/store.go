// Package timeline holds the per-track segment collections and the
// pixel/time geometry that the editor's gestures operate on.
package timeline

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"cutroom/model"
)

// ErrSegmentNotFound is returned when an operation references a segment id
// that is not in the store.
var ErrSegmentNotFound = errors.New("segment not found")

// EventKind classifies a store mutation.
type EventKind string

const (
	EventAdd    EventKind = "add"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
	EventSelect EventKind = "select"
)

// Event describes a completed store mutation. Segment is the affected
// segment after the mutation (the removed one for deletes, the first
// created one for batch adds, nil when a selection was cleared).
// Selected is the selection after the mutation, empty when none.
type Event struct {
	Kind     EventKind
	Track    model.TrackKind
	Segment  *model.Segment
	Selected string
}

// Listener receives store events. Listeners run synchronously on the
// mutating goroutine, after the store's lock has been released, so they
// may call back into the store.
type Listener func(Event)

// NewSegment is the caller-supplied part of a segment; the store assigns
// the id.
type NewSegment struct {
	AssetID       string
	SourceStart   float64
	Duration      float64
	TimelineStart float64
}

// Store holds the segments of one track in insertion order, plus the
// track's selection (at most one segment). Mutations replace the backing
// slice wholesale, so slices handed out before a mutation stay valid;
// callers treat them as read-only snapshots.
type Store struct {
	mu        sync.RWMutex
	track     model.TrackKind
	segments  []model.Segment
	selected  string
	listeners []Listener
}

// NewStore returns an empty store for the given track.
func NewStore(track model.TrackKind) *Store {
	return &Store{track: track}
}

// Track returns the track this store belongs to.
func (s *Store) Track() model.TrackKind {
	return s.track
}

// Subscribe registers a listener for subsequent mutations.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Add mints a segment with a fresh id, appends it and makes it the
// selection.
func (s *Store) Add(in NewSegment) model.Segment {
	seg := model.Segment{
		ID:            uuid.New().String(),
		AssetID:       in.AssetID,
		SourceStart:   in.SourceStart,
		Duration:      in.Duration,
		TimelineStart: in.TimelineStart,
	}

	s.mu.Lock()
	next := make([]model.Segment, 0, len(s.segments)+1)
	next = append(next, s.segments...)
	next = append(next, seg)
	s.segments = next
	s.selected = seg.ID
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventAdd, Track: s.track, Segment: &seg, Selected: seg.ID})
	return seg
}

// AddBatch appends one segment per input in a single mutation and selects
// the first of them. Fires a single event. Empty input is a no-op.
func (s *Store) AddBatch(inputs []NewSegment) []model.Segment {
	if len(inputs) == 0 {
		return nil
	}

	created := make([]model.Segment, 0, len(inputs))
	for _, in := range inputs {
		created = append(created, model.Segment{
			ID:            uuid.New().String(),
			AssetID:       in.AssetID,
			SourceStart:   in.SourceStart,
			Duration:      in.Duration,
			TimelineStart: in.TimelineStart,
		})
	}

	s.mu.Lock()
	next := make([]model.Segment, 0, len(s.segments)+len(created))
	next = append(next, s.segments...)
	next = append(next, created...)
	s.segments = next
	s.selected = created[0].ID
	listeners := s.listeners
	s.mu.Unlock()

	first := created[0]
	emit(listeners, Event{Kind: EventAdd, Track: s.track, Segment: &first, Selected: first.ID})
	return created
}

// Update merges patch into the segment with the given id. Values are
// applied as given; the store never clamps.
func (s *Store) Update(id string, patch model.SegmentPatch) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrSegmentNotFound
	}
	next := make([]model.Segment, len(s.segments))
	copy(next, s.segments)
	patch.Apply(&next[idx])
	s.segments = next
	updated := next[idx]
	selected := s.selected
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventUpdate, Track: s.track, Segment: &updated, Selected: selected})
	return nil
}

// Delete removes the segment with the given id. If it was selected the
// selection is cleared; other selections are untouched.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrSegmentNotFound
	}
	removed := s.segments[idx]
	next := make([]model.Segment, 0, len(s.segments)-1)
	next = append(next, s.segments[:idx]...)
	next = append(next, s.segments[idx+1:]...)
	s.segments = next
	if s.selected == id {
		s.selected = ""
	}
	selected := s.selected
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventDelete, Track: s.track, Segment: &removed, Selected: selected})
	return nil
}

// Select makes the segment with the given id the selection, or clears the
// selection when id is empty. Unknown ids are ignored.
func (s *Store) Select(id string) {
	s.mu.Lock()
	if id != "" && s.indexOf(id) < 0 {
		s.mu.Unlock()
		return
	}
	if s.selected == id {
		s.mu.Unlock()
		return
	}
	s.selected = id
	var seg *model.Segment
	if idx := s.indexOf(id); idx >= 0 {
		cp := s.segments[idx]
		seg = &cp
	}
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventSelect, Track: s.track, Segment: seg, Selected: id})
}

// Selected returns a copy of the selected segment, or nil when the track
// has no selection.
func (s *Store) Selected() *model.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return nil
	}
	if idx := s.indexOf(s.selected); idx >= 0 {
		cp := s.segments[idx]
		return &cp
	}
	return nil
}

// SelectedID returns the selected segment id, empty when none.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Get returns a copy of the segment with the given id.
func (s *Store) Get(id string) (model.Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.segments[idx], true
	}
	return model.Segment{}, false
}

// List returns the segments in insertion order. The returned slice is the
// store's current snapshot; callers must not modify it.
func (s *Store) List() []model.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segments
}

// Len returns the number of segments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// Ordered returns the segments sorted by timeline start. The sort is
// stable, so segments sharing a start keep their insertion order.
func (s *Store) Ordered() []model.Segment {
	s.mu.RLock()
	ordered := make([]model.Segment, len(s.segments))
	copy(ordered, s.segments)
	s.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TimelineStart < ordered[j].TimelineStart
	})
	return ordered
}

// Next returns a copy of the segment that follows afterID in timeline
// order, or nil when afterID is last or unknown.
func (s *Store) Next(afterID string) *model.Segment {
	ordered := s.Ordered()
	for i := range ordered {
		if ordered[i].ID == afterID {
			if i+1 < len(ordered) {
				next := ordered[i+1]
				return &next
			}
			return nil
		}
	}
	return nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.segments {
		if s.segments[i].ID == id {
			return i
		}
	}
	return -1
}

func emit(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
