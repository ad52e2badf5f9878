package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutroom/config"
	"cutroom/core/autocut"
	"cutroom/core/playback"
	"cutroom/core/timeline"
	"cutroom/model"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{
		PixelsPerSecond:   80,
		MinSegmentSeconds: 0.1,
		MediaBaseURL:      "/media",
	}
	return NewSession("proj-test", cfg, hub, autocut.StubDetector{}, nil)
}

func frame(t *testing.T, msgType MessageType, track model.TrackKind, payload interface{}) *WSMessage {
	t.Helper()
	msg := &WSMessage{Type: msgType, Track: track}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Data = raw
	}
	return msg
}

func TestDispatchSegmentLifecycle(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	sess.Dispatch(ctx, nil, frame(t, MsgTypeSegmentAdd, model.TrackVideo, SegmentAddData{
		AssetID:       "a1",
		SourceStart:   1,
		Duration:      4,
		TimelineStart: 2,
	}))

	store := sess.Stores[model.TrackVideo]
	require.Equal(t, 1, store.Len())
	seg := store.List()[0]
	assert.Equal(t, seg.ID, store.SelectedID(), "fresh segment becomes the selection")

	start := 5.0
	sess.Dispatch(ctx, nil, frame(t, MsgTypeSegmentUpdate, model.TrackVideo, SegmentUpdateData{
		SegmentID:     seg.ID,
		TimelineStart: &start,
	}))
	got, ok := store.Get(seg.ID)
	require.True(t, ok)
	assert.Equal(t, 5.0, got.TimelineStart)
	assert.Equal(t, 4.0, got.Duration, "unpatched fields survive")

	sess.Dispatch(ctx, nil, frame(t, MsgTypeSegmentDelete, model.TrackVideo, SegmentRefData{SegmentID: seg.ID}))
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.SelectedID())
}

func TestDispatchUpdateFindsSegmentOnEitherTrack(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	seg := sess.Stores[model.TrackAudio].Add(timeline.NewSegment{AssetID: "a1", Duration: 3})

	start := 7.5
	sess.Dispatch(ctx, nil, frame(t, MsgTypeSegmentUpdate, "", SegmentUpdateData{
		SegmentID:     seg.ID,
		TimelineStart: &start,
	}))

	got, ok := sess.Stores[model.TrackAudio].Get(seg.ID)
	require.True(t, ok)
	assert.Equal(t, 7.5, got.TimelineStart)
}

func TestDispatchDragGesture(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	seg := sess.Stores[model.TrackVideo].Add(timeline.NewSegment{AssetID: "a1", Duration: 4, TimelineStart: 1})

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureStart, model.TrackVideo, GestureStartData{
		Gesture:   GestureDrag,
		SegmentID: seg.ID,
		PointerX:  100,
	}))
	assert.True(t, sess.Drag.Active())

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureMove, model.TrackVideo, GestureMoveData{PointerX: 180}))
	got, ok := sess.Stores[model.TrackVideo].Get(seg.ID)
	require.True(t, ok)
	assert.InDelta(t, 2.0, got.TimelineStart, 1e-9, "80px at 80 px/s moves one second")

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureEnd, model.TrackVideo, nil))
	assert.False(t, sess.Drag.Active())
	assert.False(t, sess.Resize.Active())
}

func TestDispatchResizeGesture(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	seg := sess.Stores[model.TrackVideo].Add(timeline.NewSegment{AssetID: "a1", SourceStart: 1, Duration: 4})

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureStart, model.TrackVideo, GestureStartData{
		Gesture:   GestureResize,
		SegmentID: seg.ID,
		Edge:      "end",
		PointerX:  400,
	}))
	require.True(t, sess.Resize.Active())

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureMove, model.TrackVideo, GestureMoveData{PointerX: 480}))
	got, ok := sess.Stores[model.TrackVideo].Get(seg.ID)
	require.True(t, ok)
	assert.InDelta(t, 5.0, got.Duration, 1e-9)
	assert.Equal(t, 1.0, got.SourceStart, "end edge leaves the source start alone")

	sess.Dispatch(ctx, nil, frame(t, MsgTypeGestureEnd, model.TrackVideo, nil))
	assert.False(t, sess.Resize.Active())
}

func TestDispatchToggleAndProgress(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	a := sess.RegisterAsset("clip.mp4", "assets/clip.mp4", model.TrackVideo)
	sess.Stores[model.TrackVideo].Add(timeline.NewSegment{AssetID: a.ID, SourceStart: 2, Duration: 2})

	sess.Dispatch(ctx, nil, frame(t, MsgTypeTogglePlayback, model.TrackVideo, nil))
	assert.Equal(t, playback.Playing, sess.Schedulers[model.TrackVideo].State())

	sess.Dispatch(ctx, nil, frame(t, MsgTypeProgress, model.TrackVideo, ProgressData{Position: 4.0}))
	assert.Equal(t, playback.Stopped, sess.Schedulers[model.TrackVideo].State(), "last segment finished")
}

func TestDispatchToggleEmptyTrackStaysStopped(t *testing.T) {
	sess := newTestSession(t)

	sess.Dispatch(context.Background(), nil, frame(t, MsgTypeTogglePlayback, model.TrackAudio, nil))
	assert.Equal(t, playback.Stopped, sess.Schedulers[model.TrackAudio].State())
}

func TestDispatchAssetMetadata(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	a := sess.RegisterAsset("clip.mp4", "assets/clip.mp4", model.TrackVideo)
	sess.Dispatch(ctx, nil, frame(t, MsgTypeAssetMetadata, "", AssetMetadataData{AssetID: a.ID, Duration: 12.5}))

	dur, ok := sess.Registry.DurationOf(a.ID)
	require.True(t, ok)
	assert.Equal(t, 12.5, dur)
}

func TestDispatchAutoCutStub(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	a := sess.RegisterAsset("clip.mp4", "assets/clip.mp4", model.TrackVideo)
	sess.Dispatch(ctx, nil, frame(t, MsgTypeAutoCut, "", AutoCutData{AssetID: a.ID}))

	store := sess.Stores[model.TrackVideo]
	require.Equal(t, 3, store.Len(), "stub detector yields three highlight windows")
	assert.Equal(t, store.List()[0].ID, store.SelectedID(), "first created segment is selected")
}

func TestDispatchAutoCutWithoutAssetsLeavesTracksEmpty(t *testing.T) {
	sess := newTestSession(t)

	sess.Dispatch(context.Background(), nil, frame(t, MsgTypeAutoCut, "", nil))

	assert.Equal(t, 0, sess.Stores[model.TrackVideo].Len())
	assert.Equal(t, 0, sess.Stores[model.TrackAudio].Len())
}

func TestDispatchUnknownTypeIsIgnored(t *testing.T) {
	sess := newTestSession(t)

	assert.NotPanics(t, func() {
		sess.Dispatch(context.Background(), nil, frame(t, MessageType("bogus"), "", nil))
	})
}

func TestRegisterAssetBuildsMediaHandle(t *testing.T) {
	sess := newTestSession(t)

	a := sess.RegisterAsset("song.mp3", "assets/abc123.mp3", model.TrackAudio)
	assert.Equal(t, "/media/assets/abc123.mp3", a.MediaHandle)
	assert.Equal(t, model.TrackAudio, a.Kind)
	assert.Len(t, sess.Assets(), 1)
}

func TestSessionRESTMutators(t *testing.T) {
	sess := newTestSession(t)

	seg, err := sess.AddSegment(model.TrackVideo, timeline.NewSegment{AssetID: "a1", Duration: 3, TimelineStart: 4})
	require.NoError(t, err)

	start := 1.0
	require.NoError(t, sess.UpdateSegment(seg.ID, model.SegmentPatch{TimelineStart: &start}))

	segs, err := sess.Segments(model.TrackVideo)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, 1.0, segs[0].TimelineStart)

	require.NoError(t, sess.SelectSegment(model.TrackVideo, ""))
	assert.Empty(t, sess.Stores[model.TrackVideo].SelectedID())

	require.NoError(t, sess.DeleteSegment(seg.ID))
	assert.ErrorIs(t, sess.DeleteSegment(seg.ID), timeline.ErrSegmentNotFound)

	_, err = sess.AddSegment("subtitle", timeline.NewSegment{})
	assert.Error(t, err)
}

func TestApplyHighlightsAllCreatesPerAssetSegments(t *testing.T) {
	sess := newTestSession(t)

	sess.RegisterAsset("a.mp4", "assets/a.mp4", model.TrackVideo)
	sess.RegisterAsset("b.mp3", "assets/b.mp3", model.TrackAudio)

	total, err := sess.ApplyHighlightsAll([]model.HighlightRange{{Start: 1, End: 2}, {Start: 3, End: 5}})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, sess.Stores[model.TrackVideo].Len())
	assert.Equal(t, 2, sess.Stores[model.TrackAudio].Len())
}

func TestManagerGetOrCreate(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{PixelsPerSecond: 80, MinSegmentSeconds: 0.1, MediaBaseURL: "/media"}
	mgr := NewManager(cfg, hub, autocut.StubDetector{}, nil)

	first := mgr.GetOrCreate("p1")
	again := mgr.GetOrCreate("p1")
	other := mgr.GetOrCreate("p2")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, mgr.Count())
}
