package websocket

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Client is one connected WebSocket subscriber for a single poll.
type Client struct {
	PollID string
	conn   *websocket.Conn
	send   chan []byte
}

// TallyUpdate is the message pushed to subscribers after each vote.
type TallyUpdate struct {
	Type    string      `json:"type"`
	PollID  string      `json:"poll_id"`
	Payload interface{} `json:"payload"`
}

type broadcastMessage struct {
	pollID  string
	payload []byte
}

// Hub keeps the active clients grouped by poll and broadcasts tally
// updates to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
}

// NewHub creates an empty hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 16),
	}
}

// Run owns the client registry. Registers, unregisters, and broadcasts
// all flow through this single goroutine, so a client's send channel is
// closed exactly once and no send can race a close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if _, ok := h.clients[client.PollID]; !ok {
				h.clients[client.PollID] = make(map[*Client]bool)
			}
			h.clients[client.PollID][client] = true

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.pollID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer, drop it.
					h.removeClient(client)
				}
			}
		}
	}
}

// removeClient is only called from the Run goroutine.
func (h *Hub) removeClient(client *Client) {
	group, ok := h.clients[client.PollID]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}
	delete(group, client)
	close(client.send)
	if len(group) == 0 {
		delete(h.clients, client.PollID)
	}
}

// BroadcastToPoll queues an update for every client subscribed to a
// poll. Delivery happens on the hub loop; clients whose send buffer is
// full are dropped there.
func (h *Hub) BroadcastToPoll(pollID string, update *TallyUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("failed to encode tally update: %v", err)
		return
	}
	h.broadcast <- broadcastMessage{pollID: pollID, payload: payload}
}

// RegisterClient adds a client to the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
