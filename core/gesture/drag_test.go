package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutroom/core/timeline"
	"cutroom/model"
)

func TestDragMovesByPointerTravel(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	audio := timeline.NewStore(model.TrackAudio)
	drag := NewDrag(geom, video, audio)

	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 2, TimelineStart: 2})

	require.True(t, drag.Start(seg.ID, 400))
	assert.True(t, drag.Active())

	// 80 px right at 80 px/s is one second.
	drag.Move(480)
	got, _ := video.Get(seg.ID)
	assert.InDelta(t, 3.0, got.TimelineStart, 1e-9)

	// Positions derive from total travel, not per-move deltas.
	drag.Move(440)
	got, _ = video.Get(seg.ID)
	assert.InDelta(t, 2.5, got.TimelineStart, 1e-9)

	drag.End()
	assert.False(t, drag.Active())
}

func TestDragClampsAtTimelineZero(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	drag := NewDrag(geom, video)

	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 2, TimelineStart: 2})

	require.True(t, drag.Start(seg.ID, 400))
	drag.Move(80) // 320 px left would land at -2s
	got, _ := video.Get(seg.ID)
	assert.InDelta(t, 0.0, got.TimelineStart, 1e-9)

	// Dragging back right recovers from the clamp without drift.
	drag.Move(480)
	got, _ = video.Get(seg.ID)
	assert.InDelta(t, 3.0, got.TimelineStart, 1e-9)
}

func TestDragFindsSegmentAcrossStores(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	audio := timeline.NewStore(model.TrackAudio)
	drag := NewDrag(geom, video, audio)

	seg := audio.Add(timeline.NewSegment{AssetID: "a1", Duration: 1, TimelineStart: 5})

	require.True(t, drag.Start(seg.ID, 0))
	drag.Move(160)

	got, ok := audio.Get(seg.ID)
	require.True(t, ok)
	assert.InDelta(t, 7.0, got.TimelineStart, 1e-9)
	assert.Equal(t, 0, video.Len(), "the other track is untouched")
}

func TestDragIgnoredWhileIdle(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	drag := NewDrag(geom, video)

	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 1, TimelineStart: 4})

	drag.Move(999)
	got, _ := video.Get(seg.ID)
	assert.InDelta(t, 4.0, got.TimelineStart, 1e-9)
}

func TestDragUnknownSegmentStaysIdle(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	drag := NewDrag(geom, video)

	assert.False(t, drag.Start("nope", 100))
	assert.False(t, drag.Active())
}

func TestDragSurvivesMidGestureDelete(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	drag := NewDrag(geom, video)

	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 1, TimelineStart: 1})
	require.True(t, drag.Start(seg.ID, 0))
	require.NoError(t, video.Delete(seg.ID))

	drag.Move(240) // must not panic or resurrect the segment
	assert.Equal(t, 0, video.Len())
}

func TestDragRestartReplacesGesture(t *testing.T) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	drag := NewDrag(geom, video)

	a := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 1, TimelineStart: 1})
	b := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 1, TimelineStart: 5})

	require.True(t, drag.Start(a.ID, 0))
	require.True(t, drag.Start(b.ID, 0))
	assert.Equal(t, b.ID, drag.SegmentID())

	drag.Move(80)
	gotA, _ := video.Get(a.ID)
	gotB, _ := video.Get(b.ID)
	assert.InDelta(t, 1.0, gotA.TimelineStart, 1e-9, "abandoned gesture leaves its segment alone")
	assert.InDelta(t, 6.0, gotB.TimelineStart, 1e-9)
}
