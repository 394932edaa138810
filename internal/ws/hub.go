// Package ws is the live channel transport: a group-based publish/subscribe
// hub over websocket connections. Groups are named streams
// ("notifications.user.<id>", "like_counter:<kind>:<object>"); publishing to
// a group with no subscribers is not an error. Delivery is best effort only;
// durable state lives in the database.
package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of active clients and their group subscriptions.
// A nil *Hub is a valid "transport unavailable" hub: Publish reports false.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]bool
	clients map[*Client][]string
}

func NewHub() *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]bool),
		clients: make(map[*Client][]string),
	}
}

// Register subscribes a client to one or more groups and starts its pumps.
func (h *Hub) Register(client *Client, groups ...string) {
	h.mu.Lock()
	h.clients[client] = groups
	for _, name := range groups {
		if h.groups[name] == nil {
			h.groups[name] = make(map[*Client]bool)
		}
		h.groups[name][client] = true
	}
	total := len(h.clients)
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()
	log.Printf("websocket client connected (groups=%v, total=%d)", groups, total)
}

// Unregister removes a client from every group it joined and closes its send
// queue. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	groups, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		for _, name := range groups {
			if members := h.groups[name]; members != nil {
				delete(members, client)
				if len(members) == 0 {
					delete(h.groups, name)
				}
			}
		}
		client.closeSend()
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		log.Printf("websocket client disconnected (total=%d)", total)
	}
}

// Publish serializes payload and enqueues it for every subscriber of the
// group. It reports whether at least one subscriber received the message and
// never returns an error: a full client queue drops the message for that
// client rather than blocking the caller.
func (h *Hub) Publish(group string, payload any) bool {
	if h == nil {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: failed to marshal payload for group %s: %v", group, err)
		return false
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[group]))
	for client := range h.groups[group] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	delivered := false
	for _, client := range members {
		if client.enqueue(data) {
			delivered = true
		}
	}
	return delivered
}

// GroupSize returns the current number of subscribers in a group.
func (h *Hub) GroupSize(group string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
