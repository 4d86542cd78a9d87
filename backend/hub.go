package main

import (
	"encoding/json"
	"sync"
)

type Hub struct {
	mu                sync.Mutex
	clients           map[*Client]struct{}
	broadcastHistory  chan historyPayload
	broadcastStatus   chan StatusResponse
	broadcastReset    chan resetPayload
	broadcastSettings chan settingsPayload
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:           make(map[*Client]struct{}),
		broadcastHistory:  make(chan historyPayload, 32),
		broadcastStatus:   make(chan StatusResponse, 32),
		broadcastReset:    make(chan resetPayload, 8),
		broadcastSettings: make(chan settingsPayload, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastHistory:
			h.broadcast(wsMessage{Type: "history", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastStatus:
			h.broadcast(wsMessage{Type: "status", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastReset:
			h.broadcast(wsMessage{Type: "reset", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastSettings:
			h.broadcast(wsMessage{Type: "settings", Payload: mustMarshal(payload)})
		}
	}
}

// PublishStatus queues a status update, dropping it if the queue is full.
func (h *Hub) PublishStatus(status StatusResponse) {
	select {
	case h.broadcastStatus <- status:
	default:
	}
}

func (h *Hub) PublishHistory(payload historyPayload) {
	select {
	case h.broadcastHistory <- payload:
	default:
	}
}

func (h *Hub) PublishReset(payload resetPayload) {
	select {
	case h.broadcastReset <- payload:
	default:
	}
}

func (h *Hub) PublishSettings(payload settingsPayload) {
	select {
	case h.broadcastSettings <- payload:
	default:
	}
}

func (h *Hub) broadcast(msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.sendJSON(msg)
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
