// Package sse fans state-change notifications out to connected clients.
package sse

import (
	"fmt"
	"io"
	"log"
	"maps"
	"strings"
	"sync"
	"time"
)

const (
	// BufferSize is the buffer size for SSE client channels
	BufferSize = 10

	// SendTimeout bounds how long a broadcast waits on one slow client
	SendTimeout = time.Second
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// Hub tracks connected clients and the player each belongs to (0 for
// anonymous screens such as the projector).
type Hub struct {
	mu      sync.RWMutex
	clients map[chan Message]int64
	debug   bool
}

// NewHub creates an empty hub.
func NewHub(debug bool) *Hub {
	return &Hub{clients: make(map[chan Message]int64), debug: debug}
}

// Add registers a client channel
func (h *Hub) Add(client chan Message, playerID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Warn if the same player has multiple SSE connections
	if playerID != 0 {
		dup := 0
		for _, pid := range h.clients {
			if pid == playerID {
				dup++
			}
		}
		if dup > 0 {
			log.Printf("WARN: player %d opened %d additional SSE connection(s)", playerID, dup)
		}
	}
	h.clients[client] = playerID
}

// Remove unregisters a client channel
func (h *Hub) Remove(client chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	if h.debug {
		log.Printf("sse: client removed, now have %d total clients", len(h.clients))
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients and returns how many
// received it.
func (h *Hub) Broadcast(event, data string) int {
	h.mu.RLock()
	clients := maps.Clone(h.clients)
	h.mu.RUnlock()

	// Send messages WITHOUT holding the lock
	msg := Message{Event: event, Data: data}
	sent := 0
	for client := range clients {
		if send(client, msg) {
			sent++
		} else if h.debug {
			log.Printf("sse: timeout sending event=%s", event)
		}
	}
	if h.debug {
		log.Printf("sse: event=%s sent to %d/%d clients", event, sent, len(clients))
	}
	return sent
}

// BroadcastPersonalized renders and sends one message per client. Clients
// for which render returns "" are skipped. It returns how many received one.
func (h *Hub) BroadcastPersonalized(event string, render func(playerID int64) string) int {
	h.mu.RLock()
	clients := maps.Clone(h.clients)
	h.mu.RUnlock()

	sent := 0
	for client, playerID := range clients {
		data := render(playerID)
		if data == "" {
			continue
		}
		if send(client, Message{Event: event, Data: data}) {
			sent++
		} else if h.debug {
			log.Printf("sse: timeout sending event=%s to player %d", event, playerID)
		}
	}
	return sent
}

func send(client chan Message, msg Message) bool {
	select {
	case client <- msg:
		return true
	case <-time.After(SendTimeout):
		return false
	}
}

// Write encodes msg in the event-stream format. Multi-line data is split
// over several data fields.
func Write(w io.Writer, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", msg.Event)
	for _, line := range strings.Split(msg.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
