package server

import (
	"encoding/json"
	"net/http"

	"cutroom/config"
	"cutroom/core/session"
	"cutroom/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// APIHandler serves the project editing API.
type APIHandler struct {
	manager  *session.Manager
	cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewAPIHandler creates the API handler for the given session manager.
func NewAPIHandler(manager *session.Manager, cfg *config.Config) *APIHandler {
	return &APIHandler{
		manager: manager,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HealthHandler reports liveness and the session count.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.manager.Count(),
	})
}

// sessionFor resolves the project session from the route.
func (h *APIHandler) sessionFor(r *http.Request) *session.Session {
	return h.manager.GetOrCreate(mux.Vars(r)["project_id"])
}

// trackFromVars parses the {track} route variable.
func trackFromVars(r *http.Request) (model.TrackKind, bool) {
	kind := model.TrackKind(mux.Vars(r)["track"])
	return kind, kind.Valid()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
