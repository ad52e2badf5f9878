package server

import (
	"context"
	"net/http"

	"cutroom/core/session"
	"cutroom/logger"

	"github.com/gorilla/mux"
)

// WebSocketHandler attaches a client to a project session. The client
// receives a full state snapshot right after the handshake, then lives
// off incremental frames.
func (h *APIHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]
	if projectID == "" {
		http.Error(w, "Project ID is required", http.StatusBadRequest)
		return
	}

	sess := h.sessionFor(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed",
			logger.String("project", projectID),
			logger.ErrorField(err))
		return
	}

	client := session.NewClient(sess.Hub(), conn, projectID)
	sess.Hub().Register(client)

	go client.WritePump()
	go client.ReadPump(context.Background(), sess.Dispatch)

	sess.SendSnapshot(client)

	logger.Info("websocket client attached",
		logger.String("project", projectID),
		logger.String("client", client.ID))
}
