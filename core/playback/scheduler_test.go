package playback

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutroom/core/timeline"
	"cutroom/model"
)

type fakeEngine struct {
	calls   []string
	playErr error
}

func (e *fakeEngine) SetSource(handle string) {
	e.calls = append(e.calls, "source "+handle)
}

func (e *fakeEngine) Seek(seconds float64) {
	e.calls = append(e.calls, fmt.Sprintf("seek %.1f", seconds))
}

func (e *fakeEngine) Play() error {
	e.calls = append(e.calls, "play")
	return e.playErr
}

func (e *fakeEngine) Pause() {
	e.calls = append(e.calls, "pause")
}

type fakeSource map[string]string

func (f fakeSource) SourceOf(assetID string) (string, bool) {
	h, ok := f[assetID]
	return h, ok
}

func TestToggleEmptyTrackIsNoOp(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{}, engine)

	sched.Toggle()

	assert.Equal(t, Stopped, sched.State())
	assert.Empty(t, engine.calls)
	assert.Equal(t, "", store.SelectedID())
}

func TestToggleAutoSelectsFirstOrderedSegment(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 6, Duration: 1, TimelineStart: 5})
	early := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 2, TimelineStart: 0})
	store.Select("")

	sched.Toggle()

	assert.Equal(t, Playing, sched.State())
	assert.Equal(t, early.ID, store.SelectedID(), "first segment in timeline order is picked")
	assert.Equal(t, []string{"source /media/assets/a1.mp4", "seek 2.0", "play"}, engine.calls)
}

func TestToggleStopsAndResumesWithoutReload(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	seg := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 2, TimelineStart: 0})

	sched.Toggle()
	require.Equal(t, Playing, sched.State())

	sched.Toggle()
	assert.Equal(t, Stopped, sched.State())
	assert.Equal(t, seg.ID, store.SelectedID(), "stopping keeps the selection")

	sched.Toggle()
	assert.Equal(t, Playing, sched.State())
	assert.Equal(t, []string{
		"source /media/assets/a1.mp4", "seek 2.0", "play",
		"pause",
		"seek 2.0", "play", // same asset still loaded, no source swap
	}, engine.calls)
}

func TestProgressWalksSegmentsThenStops(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	a := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 2, TimelineStart: 0})
	b := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 6, Duration: 1, TimelineStart: 5})
	store.Select(a.ID)

	sched.Toggle()
	require.Equal(t, Playing, sched.State())

	sched.OnProgress(3.9)
	assert.Equal(t, a.ID, store.SelectedID(), "mid-segment progress does not advance")

	sched.OnProgress(4.0)
	assert.Equal(t, b.ID, store.SelectedID(), "boundary advances to the next segment")
	assert.Equal(t, Playing, sched.State())

	sched.OnProgress(7.2)
	assert.Equal(t, Stopped, sched.State(), "last segment finishing stops the walk")

	assert.Equal(t, []string{
		"source /media/assets/a1.mp4", "seek 2.0", "play",
		"seek 6.0", "play",
		"pause",
	}, engine.calls)
}

func TestDuplicateBoundaryReportAdvancesOnce(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	a := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 2, Duration: 2, TimelineStart: 0})
	b := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 6, Duration: 1, TimelineStart: 5})
	store.Select(a.ID)
	sched.Toggle()

	sched.OnProgress(4.0)
	sched.OnProgress(4.0) // stale duplicate, checked against b's window now

	assert.Equal(t, b.ID, store.SelectedID())
	assert.Equal(t, Playing, sched.State())
	assert.Equal(t, []string{
		"source /media/assets/a1.mp4", "seek 2.0", "play",
		"seek 6.0", "play",
	}, engine.calls)
}

func TestSelectionChangeWhilePlayingReaims(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sources := fakeSource{"a1": "/media/assets/a1.mp4", "a2": "/media/assets/a2.mp4"}
	sched := NewScheduler(model.TrackVideo, store, sources, engine)

	a := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 1, Duration: 2, TimelineStart: 0})
	b := store.Add(timeline.NewSegment{AssetID: "a2", SourceStart: 3, Duration: 2, TimelineStart: 5})
	store.Select(a.ID)
	sched.Toggle()

	store.Select(b.ID)

	assert.Equal(t, Playing, sched.State())
	assert.Equal(t, []string{
		"source /media/assets/a1.mp4", "seek 1.0", "play",
		"source /media/assets/a2.mp4", "seek 3.0", "play", // asset changed, source swaps first
	}, engine.calls)
}

func TestUpdateToCurrentSegmentDoesNotReseek(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	a := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 1, Duration: 2, TimelineStart: 0})
	sched.Toggle()
	played := len(engine.calls)

	ts := 4.0
	require.NoError(t, store.Update(a.ID, model.SegmentPatch{TimelineStart: &ts}))

	assert.Len(t, engine.calls, played, "dragging the playing segment does not restart it")
}

func TestDeleteSelectedStopsPlayback(t *testing.T) {
	store := timeline.NewStore(model.TrackAudio)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackAudio, store, fakeSource{"a1": "/media/assets/a1.wav"}, engine)

	a := store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 0, Duration: 2, TimelineStart: 0})
	sched.Toggle()
	require.Equal(t, Playing, sched.State())

	require.NoError(t, store.Delete(a.ID))

	assert.Equal(t, Stopped, sched.State())
	assert.Equal(t, "pause", engine.calls[len(engine.calls)-1])
}

func TestPlayRejectionIsBenign(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{playErr: errors.New("autoplay blocked")}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 0, Duration: 2, TimelineStart: 0})
	sched.Toggle()

	assert.Equal(t, Playing, sched.State(), "a rejected play leaves the walk running")
}

func TestUnknownAssetSkipsEngine(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{}, engine)

	store.Add(timeline.NewSegment{AssetID: "ghost", SourceStart: 0, Duration: 2, TimelineStart: 0})
	sched.Toggle()

	assert.Empty(t, engine.calls, "segments pointing at unknown assets are skipped")
}

func TestProgressIgnoredWhileStopped(t *testing.T) {
	store := timeline.NewStore(model.TrackVideo)
	engine := &fakeEngine{}
	sched := NewScheduler(model.TrackVideo, store, fakeSource{"a1": "/media/assets/a1.mp4"}, engine)

	store.Add(timeline.NewSegment{AssetID: "a1", SourceStart: 0, Duration: 2, TimelineStart: 0})
	sched.OnProgress(10)

	assert.Equal(t, Stopped, sched.State())
	assert.Empty(t, engine.calls)
}
