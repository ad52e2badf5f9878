package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutroom/core/timeline"
	"cutroom/model"
)

type fakeDurations map[string]float64

func (f fakeDurations) DurationOf(assetID string) (float64, bool) {
	d, ok := f[assetID]
	return d, ok
}

func newResizeFixture(durations fakeDurations) (*timeline.Store, *Resize) {
	geom := timeline.NewGeometry(80)
	video := timeline.NewStore(model.TrackVideo)
	return video, NewResize(geom, durations, DefaultMinSegmentSeconds, video)
}

func TestResizeEndEdgeGrowsAndShrinksDuration(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 1, Duration: 2, TimelineStart: 3})

	require.True(t, resize.Start(seg.ID, EdgeEnd, 0))

	resize.Move(80) // +1s
	got, _ := video.Get(seg.ID)
	assert.InDelta(t, 3.0, got.Duration, 1e-9)
	assert.InDelta(t, 1.0, got.SourceStart, 1e-9, "end edge never moves the source start")
	assert.InDelta(t, 3.0, got.TimelineStart, 1e-9, "resize never moves the clip")

	resize.Move(-40) // -0.5s from the original grab
	got, _ = video.Get(seg.ID)
	assert.InDelta(t, 1.5, got.Duration, 1e-9)
}

func TestResizeDurationNeverBelowFloor(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 1, Duration: 2, TimelineStart: 0})

	require.True(t, resize.Start(seg.ID, EdgeEnd, 0))
	resize.Move(-800) // -10s, far past zero duration

	got, _ := video.Get(seg.ID)
	assert.InDelta(t, DefaultMinSegmentSeconds, got.Duration, 1e-9)
	assert.InDelta(t, 1.0, got.SourceStart, 1e-9)
}

func TestResizeStartEdgePreservesSourceEnd(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 3, TimelineStart: 1})
	sourceEnd := seg.SourceEnd()

	require.True(t, resize.Start(seg.ID, EdgeStart, 0))

	t.Run("trimming right keeps the end point", func(t *testing.T) {
		resize.Move(80) // +1s
		got, _ := video.Get(seg.ID)
		assert.InDelta(t, 3.0, got.SourceStart, 1e-9)
		assert.InDelta(t, 2.0, got.Duration, 1e-9)
		assert.InDelta(t, sourceEnd, got.SourceEnd(), 1e-9)
	})

	t.Run("extending left keeps the end point", func(t *testing.T) {
		resize.Move(-80) // -1s from the grab
		got, _ := video.Get(seg.ID)
		assert.InDelta(t, 1.0, got.SourceStart, 1e-9)
		assert.InDelta(t, 4.0, got.Duration, 1e-9)
		assert.InDelta(t, sourceEnd, got.SourceEnd(), 1e-9)
	})

	t.Run("zero clamp extends the window instead", func(t *testing.T) {
		resize.Move(-240) // -3s, start would land at -1
		got, _ := video.Get(seg.ID)
		assert.InDelta(t, 0.0, got.SourceStart, 1e-9)
		assert.InDelta(t, 6.0, got.Duration, 1e-9, "duration keeps the raw delta once the clamp engages")
	})
}

func TestResizeCapsAtKnownAssetDuration(t *testing.T) {
	durations := fakeDurations{"a1": 10}

	t.Run("end edge", func(t *testing.T) {
		video, resize := newResizeFixture(durations)
		seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 4, Duration: 2, TimelineStart: 0})

		require.True(t, resize.Start(seg.ID, EdgeEnd, 0))
		resize.Move(800) // +10s, way past the media end

		got, _ := video.Get(seg.ID)
		assert.InDelta(t, 6.0, got.Duration, 1e-9, "duration stops at assetDuration-sourceStart")
		assert.InDelta(t, 10.0, got.SourceEnd(), 1e-9)
	})

	t.Run("start edge degenerate trim", func(t *testing.T) {
		video, resize := newResizeFixture(durations)
		seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 3, TimelineStart: 0})

		require.True(t, resize.Start(seg.ID, EdgeStart, 0))
		resize.Move(1600) // +20s, past the media end

		got, _ := video.Get(seg.ID)
		assert.InDelta(t, DefaultMinSegmentSeconds, got.Duration, 1e-9)
		assert.LessOrEqual(t, got.SourceEnd(), 10.0+1e-9, "window stays inside the media")
	})
}

func TestResizeUnboundedWhileDurationUnknown(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 4, Duration: 2, TimelineStart: 0})

	require.True(t, resize.Start(seg.ID, EdgeEnd, 0))
	resize.Move(800) // +10s

	got, _ := video.Get(seg.ID)
	assert.InDelta(t, 12.0, got.Duration, 1e-9, "no cap until the media reports its duration")
}

func TestResizeRejectsUnknownEdgeOrSegment(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 2})

	assert.False(t, resize.Start(seg.ID, Edge("middle"), 0))
	assert.False(t, resize.Start("nope", EdgeEnd, 0))
	assert.False(t, resize.Active())
}

func TestResizeSurvivesMidGestureDelete(t *testing.T) {
	video, resize := newResizeFixture(fakeDurations{})
	seg := video.Add(timeline.NewSegment{AssetID: "a1", Duration: 2})

	require.True(t, resize.Start(seg.ID, EdgeEnd, 0))
	require.NoError(t, video.Delete(seg.ID))

	resize.Move(80) // must not panic
	assert.Equal(t, 0, video.Len())
}
