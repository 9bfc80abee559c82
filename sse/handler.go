package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/widgetkit/logger"
)

// KeepAliveInterval stays below common proxy idle timeouts.
const KeepAliveInterval = 30 * time.Second

// connectedPayload is sent when a client connects.
type connectedPayload struct {
	ClientID string `json:"clientID"`
	Topic    string `json:"topic"`
}

// ServeSSE streams the frames of topic to the client until the request
// ends or the hub stops. Frames in initial are written right after the
// connected frame, so a late subscriber sees the current render.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID, topic string, initial ...Frame) {
	log := logger.Get("sse")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived stream: lift the server's write deadline.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields("client_id", clientID, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, topic)
	if !hub.Register(client) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	hello, _ := json.Marshal(connectedPayload{ClientID: clientID, Topic: topic})
	writeFrame(w, Frame{Event: EventConnected, Data: hello})
	for _, f := range initial {
		writeFrame(w, f)
	}
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-client.Frames():
			if !ok {
				return
			}
			writeFrame(w, f)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) {
	if f.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", f.Event)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", f.Data)
}
