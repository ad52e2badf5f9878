// Package session ties one project's editing core to its websocket
// clients: commands come in over the socket or REST, state pushes go
// out to everyone attached.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cutroom/config"
	"cutroom/core/asset"
	"cutroom/core/autocut"
	"cutroom/core/gesture"
	"cutroom/core/playback"
	"cutroom/core/timeline"
	"cutroom/logger"
	"cutroom/model"
)

// Session is one project's editing state: the asset registry, the two
// track stores, the gesture controllers and the per-track playback
// schedulers. Every command runs under the session lock, strictly one
// at a time, so the editing core never sees concurrent mutations.
type Session struct {
	ProjectID string

	Registry   *asset.Registry
	Geometry   *timeline.Geometry
	Stores     map[model.TrackKind]*timeline.Store
	Drag       *gesture.Drag
	Resize     *gesture.Resize
	Schedulers map[model.TrackKind]*playback.Scheduler
	AutoCut    *autocut.Adapter

	hub       *Hub
	mediaBase string

	mu        sync.Mutex
	lastState map[model.TrackKind]playback.State
}

// NewSession builds the editing core for a project.
func NewSession(projectID string, cfg *config.Config, hub *Hub, detector autocut.Detector, rangeCache autocut.RangeCache) *Session {
	geom := timeline.NewGeometry(cfg.PixelsPerSecond)
	video := timeline.NewStore(model.TrackVideo)
	audio := timeline.NewStore(model.TrackAudio)
	registry := asset.NewRegistry()

	s := &Session{
		ProjectID: projectID,
		Registry:  registry,
		Geometry:  geom,
		Stores: map[model.TrackKind]*timeline.Store{
			model.TrackVideo: video,
			model.TrackAudio: audio,
		},
		Drag:      gesture.NewDrag(geom, video, audio),
		Resize:    gesture.NewResize(geom, registry, cfg.MinSegmentSeconds, video, audio),
		hub:       hub,
		mediaBase: strings.TrimSuffix(cfg.MediaBaseURL, "/"),
		lastState: map[model.TrackKind]playback.State{
			model.TrackVideo: playback.Stopped,
			model.TrackAudio: playback.Stopped,
		},
	}

	// Schedulers subscribe before the broadcast listeners so every state
	// push already reflects the walk's reaction to the mutation.
	s.Schedulers = map[model.TrackKind]*playback.Scheduler{
		model.TrackVideo: playback.NewScheduler(model.TrackVideo, video, registry,
			newWSEngine(hub, projectID, model.TrackVideo)),
		model.TrackAudio: playback.NewScheduler(model.TrackAudio, audio, registry,
			newWSEngine(hub, projectID, model.TrackAudio)),
	}
	for kind, store := range s.Stores {
		k := kind
		store.Subscribe(func(timeline.Event) {
			s.broadcastTimeline(k)
		})
	}

	s.AutoCut = autocut.NewAdapter(registry, s.Stores, detector, rangeCache)
	return s
}

// Dispatch handles one inbound frame.
func (s *Session) Dispatch(ctx context.Context, client *Client, msg *WSMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case MsgTypeGestureStart:
		s.handleGestureStart(msg)
	case MsgTypeGestureMove:
		s.handleGestureMove(msg)
	case MsgTypeGestureEnd:
		// Pointer up anywhere ends whichever gesture is armed.
		s.Drag.End()
		s.Resize.End()
	case MsgTypeSegmentAdd:
		s.handleSegmentAdd(msg)
	case MsgTypeSegmentUpdate:
		s.handleSegmentUpdate(msg)
	case MsgTypeSegmentDelete:
		s.handleSegmentDelete(msg)
	case MsgTypeSegmentSelect:
		s.handleSegmentSelect(msg)
	case MsgTypeTogglePlayback:
		s.handleTogglePlayback(msg)
	case MsgTypeProgress:
		s.handleProgress(msg)
	case MsgTypeAssetMetadata:
		s.handleAssetMetadata(msg)
	case MsgTypePlayRejected:
		s.handlePlayRejected(msg)
	case MsgTypeAutoCut:
		s.handleAutoCut(ctx, msg)
	default:
		logger.Warn("unknown message type",
			logger.String("project", s.ProjectID),
			logger.String("client", clientID(client)),
			logger.String("type", string(msg.Type)))
	}

	s.syncTransport()
}

// SendSnapshot pushes the project's full state to one client, right
// after it attaches.
func (s *Session) SendSnapshot(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := client.SendData(MsgTypeAssets, "", AssetsData{Assets: s.Registry.List()}); err != nil {
		logger.Warn("failed to send asset snapshot",
			logger.String("client", client.ID),
			logger.ErrorField(err))
	}
	for kind, store := range s.Stores {
		if err := client.SendData(MsgTypeTimeline, kind, TimelineData{
			Segments: store.List(),
			Selected: store.SelectedID(),
		}); err != nil {
			logger.Warn("failed to send timeline snapshot",
				logger.String("client", client.ID),
				logger.String("track", string(kind)),
				logger.ErrorField(err))
		}
		if err := client.SendData(MsgTypePlayback, kind, PlaybackStateData{
			State: string(s.Schedulers[kind].State()),
		}); err != nil {
			logger.Warn("failed to send playback snapshot",
				logger.String("client", client.ID),
				logger.String("track", string(kind)),
				logger.ErrorField(err))
		}
	}
}

// RegisterAsset registers an uploaded media object and announces it to
// attached clients.
func (s *Session) RegisterAsset(name, objectName string, kind model.TrackKind) model.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := s.mediaBase + "/" + objectName
	a := s.Registry.Register(name, handle, kind)
	logger.Info("asset registered",
		logger.String("project", s.ProjectID),
		logger.String("asset", a.ID),
		logger.String("name", name),
		logger.String("track", string(kind)))
	s.broadcastAssets()
	return a
}

// SetAssetDuration records a duration report arriving over REST.
func (s *Session) SetAssetDuration(assetID string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Registry.SetDuration(assetID, seconds); err != nil {
		return err
	}
	s.broadcastAssets()
	return nil
}

// AddSegment creates a segment over REST.
func (s *Session) AddSegment(track model.TrackKind, in timeline.NewSegment) (model.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.Stores[track]
	if store == nil {
		return model.Segment{}, fmt.Errorf("unknown track %q", track)
	}
	seg := store.Add(in)
	s.syncTransport()
	return seg, nil
}

// UpdateSegment merges a patch into whichever track holds the segment.
func (s *Session) UpdateSegment(id string, patch model.SegmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.updateSegment(id, patch) {
		return timeline.ErrSegmentNotFound
	}
	s.syncTransport()
	return nil
}

// DeleteSegment removes the segment from whichever track holds it.
func (s *Session) DeleteSegment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.deleteSegment(id) {
		return timeline.ErrSegmentNotFound
	}
	s.syncTransport()
	return nil
}

// SelectSegment sets or clears a track's selection.
func (s *Session) SelectSegment(track model.TrackKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.Stores[track]
	if store == nil {
		return fmt.Errorf("unknown track %q", track)
	}
	store.Select(id)
	s.syncTransport()
	return nil
}

// ApplyHighlights applies explicit ranges to one asset.
func (s *Session) ApplyHighlights(assetID string, ranges []model.HighlightRange) ([]model.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.AutoCut.Apply(assetID, ranges)
	s.syncTransport()
	return created, err
}

// ApplyHighlightsAll applies the same ranges to every registered asset.
func (s *Session) ApplyHighlightsAll(ranges []model.HighlightRange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, err := s.AutoCut.ApplyAll(ranges)
	s.syncTransport()
	return total, err
}

// RunAutoCut detects highlights for one asset and applies them.
func (s *Session) RunAutoCut(ctx context.Context, assetID string) ([]model.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.AutoCut.Run(ctx, assetID)
	s.syncTransport()
	return created, err
}

// RunAutoCutAll detects highlights for every registered asset.
func (s *Session) RunAutoCutAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, err := s.AutoCut.RunAll(ctx)
	s.syncTransport()
	return total, err
}

// Assets returns the registered assets in registration order.
func (s *Session) Assets() []model.Asset {
	return s.Registry.List()
}

// Segments returns a track's segments in insertion order.
func (s *Session) Segments(track model.TrackKind) ([]model.Segment, error) {
	store := s.Stores[track]
	if store == nil {
		return nil, fmt.Errorf("unknown track %q", track)
	}
	return store.List(), nil
}

// OrderedSegments returns a track's segments in timeline order.
func (s *Session) OrderedSegments(track model.TrackKind) ([]model.Segment, error) {
	store := s.Stores[track]
	if store == nil {
		return nil, fmt.Errorf("unknown track %q", track)
	}
	return store.Ordered(), nil
}

// Hub returns the hub this session broadcasts through.
func (s *Session) Hub() *Hub {
	return s.hub
}

// Notice pushes a user-visible message to every client of the project.
func (s *Session) Notice(level, message string) {
	if err := s.hub.BroadcastData(s.ProjectID, MsgTypeNotice, "", NoticeData{Level: level, Message: message}); err != nil {
		logger.Error("failed to broadcast notice",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
	}
}

// ---- inbound frame handlers, called with the session lock held ----

func (s *Session) handleGestureStart(msg *WSMessage) {
	var data GestureStartData
	if err := unmarshal(msg, &data); err != nil {
		logger.Warn("bad gesture_start payload",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
		return
	}
	switch data.Gesture {
	case GestureDrag:
		if !s.Drag.Start(data.SegmentID, data.PointerX) {
			logger.Debug("drag start ignored, unknown segment",
				logger.String("project", s.ProjectID),
				logger.String("segment", data.SegmentID))
		}
	case GestureResize:
		if !s.Resize.Start(data.SegmentID, gesture.Edge(data.Edge), data.PointerX) {
			logger.Debug("resize start ignored",
				logger.String("project", s.ProjectID),
				logger.String("segment", data.SegmentID),
				logger.String("edge", data.Edge))
		}
	default:
		logger.Warn("unknown gesture",
			logger.String("project", s.ProjectID),
			logger.String("gesture", data.Gesture))
	}
}

func (s *Session) handleGestureMove(msg *WSMessage) {
	var data GestureMoveData
	if err := unmarshal(msg, &data); err != nil {
		return
	}
	// Only the armed controller reacts.
	s.Drag.Move(data.PointerX)
	s.Resize.Move(data.PointerX)
}

func (s *Session) handleSegmentAdd(msg *WSMessage) {
	store := s.Stores[msg.Track]
	if store == nil {
		logger.Warn("segment_add without a valid track",
			logger.String("project", s.ProjectID),
			logger.String("track", string(msg.Track)))
		return
	}
	var data SegmentAddData
	if err := unmarshal(msg, &data); err != nil {
		logger.Warn("bad segment_add payload",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
		return
	}
	seg := store.Add(timeline.NewSegment{
		AssetID:       data.AssetID,
		SourceStart:   data.SourceStart,
		Duration:      data.Duration,
		TimelineStart: data.TimelineStart,
	})
	logger.Info("segment added",
		logger.String("project", s.ProjectID),
		logger.String("track", string(msg.Track)),
		logger.String("segment", seg.ID))
}

func (s *Session) handleSegmentUpdate(msg *WSMessage) {
	var data SegmentUpdateData
	if err := unmarshal(msg, &data); err != nil {
		logger.Warn("bad segment_update payload",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
		return
	}
	patch := model.SegmentPatch{
		AssetID:       data.AssetID,
		SourceStart:   data.SourceStart,
		Duration:      data.Duration,
		TimelineStart: data.TimelineStart,
	}
	if !s.updateSegment(data.SegmentID, patch) {
		logger.Debug("update ignored, unknown segment",
			logger.String("project", s.ProjectID),
			logger.String("segment", data.SegmentID))
	}
}

func (s *Session) handleSegmentDelete(msg *WSMessage) {
	var data SegmentRefData
	if err := unmarshal(msg, &data); err != nil {
		return
	}
	if !s.deleteSegment(data.SegmentID) {
		logger.Debug("delete ignored, unknown segment",
			logger.String("project", s.ProjectID),
			logger.String("segment", data.SegmentID))
	}
}

func (s *Session) handleSegmentSelect(msg *WSMessage) {
	store := s.Stores[msg.Track]
	if store == nil {
		logger.Warn("segment_select without a valid track",
			logger.String("project", s.ProjectID),
			logger.String("track", string(msg.Track)))
		return
	}
	var data SegmentRefData
	if err := unmarshal(msg, &data); err != nil {
		return
	}
	store.Select(data.SegmentID)
}

func (s *Session) handleTogglePlayback(msg *WSMessage) {
	sched := s.Schedulers[msg.Track]
	if sched == nil {
		logger.Warn("toggle_playback without a valid track",
			logger.String("project", s.ProjectID),
			logger.String("track", string(msg.Track)))
		return
	}
	sched.Toggle()
}

func (s *Session) handleProgress(msg *WSMessage) {
	sched := s.Schedulers[msg.Track]
	if sched == nil {
		return
	}
	var data ProgressData
	if err := unmarshal(msg, &data); err != nil {
		return
	}
	sched.OnProgress(data.Position)
}

func (s *Session) handleAssetMetadata(msg *WSMessage) {
	var data AssetMetadataData
	if err := unmarshal(msg, &data); err != nil {
		logger.Warn("bad asset_metadata payload",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
		return
	}
	if err := s.Registry.SetDuration(data.AssetID, data.Duration); err != nil {
		logger.Debug("metadata for unknown asset",
			logger.String("project", s.ProjectID),
			logger.String("asset", data.AssetID))
		return
	}
	logger.Info("asset duration reported",
		logger.String("project", s.ProjectID),
		logger.String("asset", data.AssetID),
		logger.Float64("seconds", data.Duration))
	s.broadcastAssets()
}

func (s *Session) handlePlayRejected(msg *WSMessage) {
	var data PlayRejectedData
	_ = unmarshal(msg, &data) // reason is optional
	logger.Warn("client player rejected play",
		logger.String("project", s.ProjectID),
		logger.String("track", string(msg.Track)),
		logger.String("reason", data.Reason))
}

func (s *Session) handleAutoCut(ctx context.Context, msg *WSMessage) {
	var data AutoCutData
	if len(msg.Data) > 0 {
		if err := unmarshal(msg, &data); err != nil {
			logger.Warn("bad autocut payload",
				logger.String("project", s.ProjectID),
				logger.ErrorField(err))
			return
		}
	}
	if data.AssetID != "" {
		if _, err := s.AutoCut.Run(ctx, data.AssetID); err != nil {
			s.noticeFor(err)
		}
		return
	}
	if _, err := s.AutoCut.RunAll(ctx); err != nil {
		s.noticeFor(err)
	}
}

// ---- internals ----

func (s *Session) updateSegment(id string, patch model.SegmentPatch) bool {
	for _, store := range s.Stores {
		if err := store.Update(id, patch); err == nil {
			return true
		}
	}
	return false
}

func (s *Session) deleteSegment(id string) bool {
	for _, store := range s.Stores {
		if err := store.Delete(id); err == nil {
			return true
		}
	}
	return false
}

func (s *Session) noticeFor(err error) {
	switch {
	case errors.Is(err, autocut.ErrNoAssets):
		s.Notice("warning", "Add media to the project before running AutoCut.")
	case errors.Is(err, asset.ErrAssetNotFound):
		s.Notice("warning", "That media file is no longer in the project.")
	default:
		logger.Error("autocut failed",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
		s.Notice("error", "AutoCut failed, try again.")
	}
}

// broadcastTimeline pushes one track's state. Runs from store listeners
// on the mutating goroutine.
func (s *Session) broadcastTimeline(track model.TrackKind) {
	store := s.Stores[track]
	if store == nil {
		return
	}
	data := TimelineData{Segments: store.List(), Selected: store.SelectedID()}
	if err := s.hub.BroadcastData(s.ProjectID, MsgTypeTimeline, track, data); err != nil {
		logger.Error("failed to broadcast timeline",
			logger.String("project", s.ProjectID),
			logger.String("track", string(track)),
			logger.ErrorField(err))
	}
}

func (s *Session) broadcastAssets() {
	if err := s.hub.BroadcastData(s.ProjectID, MsgTypeAssets, "", AssetsData{Assets: s.Registry.List()}); err != nil {
		logger.Error("failed to broadcast assets",
			logger.String("project", s.ProjectID),
			logger.ErrorField(err))
	}
}

// syncTransport pushes playback state for tracks whose transport changed
// since the last push. Called with the session lock held.
func (s *Session) syncTransport() {
	for kind, sched := range s.Schedulers {
		state := sched.State()
		if s.lastState[kind] == state {
			continue
		}
		s.lastState[kind] = state
		if err := s.hub.BroadcastData(s.ProjectID, MsgTypePlayback, kind, PlaybackStateData{State: string(state)}); err != nil {
			logger.Error("failed to broadcast playback state",
				logger.String("project", s.ProjectID),
				logger.String("track", string(kind)),
				logger.ErrorField(err))
		}
	}
}

func unmarshal(msg *WSMessage, v interface{}) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("missing data payload")
	}
	return json.Unmarshal(msg.Data, v)
}

func clientID(client *Client) string {
	if client == nil {
		return ""
	}
	return client.ID
}
