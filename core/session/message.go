package session

import (
	"encoding/json"

	"cutroom/model"
)

// MessageType classifies websocket frames.
type MessageType string

const (
	// Connection upkeep
	MsgTypePing MessageType = "ping"
	MsgTypePong MessageType = "pong"

	// Editing commands (client -> server)
	MsgTypeGestureStart  MessageType = "gesture_start"
	MsgTypeGestureMove   MessageType = "gesture_move"
	MsgTypeGestureEnd    MessageType = "gesture_end"
	MsgTypeSegmentAdd    MessageType = "segment_add"
	MsgTypeSegmentUpdate MessageType = "segment_update"
	MsgTypeSegmentDelete MessageType = "segment_delete"
	MsgTypeSegmentSelect MessageType = "segment_select"
	MsgTypeAutoCut       MessageType = "autocut"

	// Playback (client -> server)
	MsgTypeTogglePlayback MessageType = "toggle_playback"
	MsgTypeProgress       MessageType = "progress"
	MsgTypePlayRejected   MessageType = "play_rejected"
	MsgTypeAssetMetadata  MessageType = "asset_metadata"

	// State pushes (server -> client)
	MsgTypeEngine   MessageType = "engine"
	MsgTypeTimeline MessageType = "timeline"
	MsgTypePlayback MessageType = "playback"
	MsgTypeAssets   MessageType = "assets"
	MsgTypeNotice   MessageType = "notice"
)

// Gesture names carried by gesture_start.
const (
	GestureDrag   = "drag"
	GestureResize = "resize"
)

// Engine commands carried by engine frames.
const (
	EngineSetSource = "set_source"
	EngineSeek      = "seek"
	EnginePlay      = "play"
	EnginePause     = "pause"
)

// WSMessage is the websocket envelope. Track scopes a frame to one
// timeline track where the operation is per-track.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Track     model.TrackKind `json:"track,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// GestureStartData arms a drag or resize for the segment under the
// pointer. Edge is required for resizes.
type GestureStartData struct {
	Gesture   string  `json:"gesture"`
	SegmentID string  `json:"segmentId"`
	Edge      string  `json:"edge,omitempty"`
	PointerX  float64 `json:"pointerX"`
}

// GestureMoveData reports the pointer's current horizontal position.
type GestureMoveData struct {
	PointerX float64 `json:"pointerX"`
}

// SegmentAddData creates a segment on the frame's track.
type SegmentAddData struct {
	AssetID       string  `json:"assetId"`
	SourceStart   float64 `json:"sourceStart"`
	Duration      float64 `json:"duration"`
	TimelineStart float64 `json:"timelineStart"`
}

// SegmentUpdateData merges the non-nil fields into a segment. Values are
// applied as sent; manual edits are trusted.
type SegmentUpdateData struct {
	SegmentID     string   `json:"segmentId"`
	AssetID       *string  `json:"assetId,omitempty"`
	SourceStart   *float64 `json:"sourceStart,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	TimelineStart *float64 `json:"timelineStart,omitempty"`
}

// SegmentRefData names a segment; an empty id on segment_select clears
// the track's selection.
type SegmentRefData struct {
	SegmentID string `json:"segmentId"`
}

// ProgressData is the player's position report for the frame's track.
type ProgressData struct {
	Position float64 `json:"position"`
}

// AssetMetadataData reports an asset's intrinsic duration once the
// player has loaded its metadata.
type AssetMetadataData struct {
	AssetID  string  `json:"assetId"`
	Duration float64 `json:"duration"`
}

// PlayRejectedData reports that the player refused a play command.
type PlayRejectedData struct {
	Reason string `json:"reason"`
}

// AutoCutData runs highlight detection for one asset, or for every
// registered asset when AssetID is empty.
type AutoCutData struct {
	AssetID string `json:"assetId,omitempty"`
}

// EngineCommandData is a command for the track's media element.
type EngineCommandData struct {
	Command  string  `json:"command"`
	Handle   string  `json:"handle,omitempty"`
	Position float64 `json:"position,omitempty"`
}

// TimelineData is the full state of one track: segments in insertion
// order plus the selection.
type TimelineData struct {
	Segments []model.Segment `json:"segments"`
	Selected string          `json:"selectedId"`
}

// PlaybackStateData mirrors a track's transport state.
type PlaybackStateData struct {
	State string `json:"state"`
}

// AssetsData is the project's asset list in registration order.
type AssetsData struct {
	Assets []model.Asset `json:"assets"`
}

// NoticeData is a user-visible message.
type NoticeData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
