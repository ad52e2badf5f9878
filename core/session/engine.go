package session

import (
	"cutroom/logger"
	"cutroom/model"
)

// wsEngine commands a track's media element by broadcasting engine
// frames to every client of the project. The element itself lives in the
// browser; rejections come back asynchronously as play_rejected frames,
// so Play never fails here.
type wsEngine struct {
	hub       *Hub
	projectID string
	track     model.TrackKind
}

func newWSEngine(hub *Hub, projectID string, track model.TrackKind) *wsEngine {
	return &wsEngine{hub: hub, projectID: projectID, track: track}
}

func (e *wsEngine) SetSource(handle string) {
	e.send(EngineCommandData{Command: EngineSetSource, Handle: handle})
}

func (e *wsEngine) Seek(seconds float64) {
	e.send(EngineCommandData{Command: EngineSeek, Position: seconds})
}

func (e *wsEngine) Play() error {
	e.send(EngineCommandData{Command: EnginePlay})
	return nil
}

func (e *wsEngine) Pause() {
	e.send(EngineCommandData{Command: EnginePause})
}

func (e *wsEngine) send(data EngineCommandData) {
	if err := e.hub.BroadcastData(e.projectID, MsgTypeEngine, e.track, data); err != nil {
		logger.Error("failed to broadcast engine command",
			logger.String("project", e.projectID),
			logger.String("track", string(e.track)),
			logger.String("command", data.Command),
			logger.ErrorField(err))
	}
}
