package sse

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/kbukum/widgetkit/logger"
)

// Frame names.
const (
	EventConnected = "connected"
	EventMount     = "mount"
	EventUnmount   = "unmount"
)

// clientBuffer is the number of frames a slow client may lag behind before
// frames are dropped.
const clientBuffer = 64

// Frame is one SSE event.
type Frame struct {
	Event string
	Data  []byte
}

// Broadcaster delivers frames to the subscribers of a topic.
type Broadcaster interface {
	Broadcast(topic string, f Frame) int
}

// Client is one connected subscriber.
type Client struct {
	id     string
	topic  string
	frames chan Frame
	once   sync.Once
}

// NewClient creates a subscriber of topic. Topics may be glob patterns.
func NewClient(id, topic string) *Client {
	return &Client{id: id, topic: topic, frames: make(chan Frame, clientBuffer)}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Topic returns the topic pattern the client follows.
func (c *Client) Topic() string { return c.topic }

// Frames returns the client's frame stream. It is closed when the client
// is unregistered or the hub stops.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Send queues f without blocking. It returns false when the client is too
// slow and the frame was dropped.
func (c *Client) Send(f Frame) bool {
	select {
	case c.frames <- f:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.frames) })
}

// Hub tracks subscribers. Broadcasts are synchronous and never block on a
// slow client.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	stopped bool
	log     *logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client), log: logger.Get("sse")}
}

// Register adds c, replacing any client with the same id. It returns
// false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		c.close()
		return false
	}
	if old, ok := h.clients[c.id]; ok && old != c {
		old.close()
	}
	h.clients[c.id] = c
	return true
}

// Unregister removes c and closes its stream.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
	}
	c.close()
}

// Broadcast sends f to every client whose topic pattern matches topic and
// returns how many received it.
func (h *Hub) Broadcast(topic string, f Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, c := range h.clients {
		matched, err := filepath.Match(c.topic, topic)
		if err != nil || !matched {
			continue
		}
		if c.Send(f) {
			sent++
		} else {
			h.log.Warn("client too slow, frame dropped", logger.Fields("client_id", c.id, logger.FieldContainerID, topic))
		}
	}
	return sent
}

// Stop disconnects every client. Later registrations are refused.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientIDs returns the connected client ids, sorted.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
