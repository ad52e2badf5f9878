package session

import (
	"encoding/json"
	"sync"
	"time"

	"cutroom/logger"
	"cutroom/model"
)

// BroadcastMessage targets every client attached to one project.
type BroadcastMessage struct {
	ProjectID string
	Message   []byte
}

// Hub owns the websocket connections, grouped by project. Registration
// and fanout run through channels drained by a single Run loop.
type Hub struct {
	// project id -> attached clients
	projects map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu   sync.RWMutex
	done chan struct{}
}

// NewHub returns a hub ready for Run.
func NewHub() *Hub {
	return &Hub{
		projects:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run drains the hub's channels until Stop is called. Start it on its
// own goroutine before accepting connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToProject(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Register attaches a client to its project.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister detaches a client.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a raw frame for every client of a project.
func (h *Hub) Broadcast(projectID string, message []byte) {
	h.broadcast <- &BroadcastMessage{ProjectID: projectID, Message: message}
}

// BroadcastData builds, stamps and queues a frame for every client of a
// project.
func (h *Hub) BroadcastData(projectID string, msgType MessageType, track model.TrackKind, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg := &WSMessage{
		Type:      msgType,
		Track:     track,
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(projectID, raw)
	return nil
}

// ClientCount returns the number of clients attached to a project.
func (h *Hub) ClientCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	projectID := client.ProjectID
	if h.projects[projectID] == nil {
		h.projects[projectID] = make(map[*Client]bool)
	}
	h.projects[projectID][client] = true

	logger.Info("client attached",
		logger.String("project", projectID),
		logger.String("client", client.ID),
		logger.Int("clients", len(h.projects[projectID])))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	projectID := client.ProjectID
	if clients, ok := h.projects[projectID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)

			if len(clients) == 0 {
				delete(h.projects, projectID)
			}
		}
	}

	logger.Info("client detached",
		logger.String("project", projectID),
		logger.String("client", client.ID))
}

func (h *Hub) broadcastToProject(msg *BroadcastMessage) {
	h.mu.RLock()
	clients, ok := h.projects[msg.ProjectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list so the lock is not held while sending.
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.Send <- msg.Message:
		default:
			// Send buffer full; the client is too slow, drop it. This
			// runs on the Run goroutine, so remove directly instead of
			// going through the unregister channel.
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.projects {
		for client := range clients {
			close(client.Send)
		}
	}
	h.projects = make(map[string]map[*Client]bool)
}
