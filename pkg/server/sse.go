// Package server - Server-Sent Events for real-time cleaning progress.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SSEBroker manages Server-Sent Events connections.
type SSEBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan SSEEvent]struct{}
}

// SSEEvent represents an event to send to clients.
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	ID    string      `json:"id,omitempty"`
}

// NewSSEBroker creates a new SSE broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{
		subscribers: make(map[string]map[chan SSEEvent]struct{}),
	}
}

// Subscribe creates a subscription for a session.
func (b *SSEBroker) Subscribe(sessionID string) chan SSEEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan SSEEvent, 10)
	if b.subscribers[sessionID] == nil {
		b.subscribers[sessionID] = make(map[chan SSEEvent]struct{})
	}
	b.subscribers[sessionID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription.
func (b *SSEBroker) Unsubscribe(sessionID string, ch chan SSEEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[sessionID]; ok {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(b.subscribers, sessionID)
		}
	}
}

// Publish sends an event to all subscribers of a session.
func (b *SSEBroker) Publish(sessionID string, event SSEEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if subs, ok := b.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Channel full, skip
			}
		}
	}
}

// PublishProgress sends a stage progress update.
func (b *SSEBroker) PublishProgress(sessionID, stage string, rows int) {
	b.Publish(sessionID, SSEEvent{
		Event: "progress",
		Data:  map[string]interface{}{"stage": stage, "rows": rows},
		ID:    fmt.Sprintf("%d", time.Now().UnixNano()),
	})
}

// PublishComplete sends a completion event.
func (b *SSEBroker) PublishComplete(sessionID string, result interface{}) {
	b.Publish(sessionID, SSEEvent{
		Event: "complete",
		Data:  result,
		ID:    fmt.Sprintf("%d", time.Now().UnixNano()),
	})
}

// PublishError sends an error event.
func (b *SSEBroker) PublishError(sessionID string, err error) {
	b.Publish(sessionID, SSEEvent{
		Event: "error",
		Data:  map[string]string{"error": err.Error()},
		ID:    fmt.Sprintf("%d", time.Now().UnixNano()),
	})
}

// HasSubscribers checks if a session has any subscribers.
func (b *SSEBroker) HasSubscribers(sessionID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID]) > 0
}

// SSEHandler creates an HTTP handler for SSE connections.
func (b *SSEBroker) SSEHandler(getSession func(string) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id required", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ch := b.Subscribe(sessionID)
		defer b.Unsubscribe(sessionID, ch)

		if getSession != nil {
			if sess := getSession(sessionID); sess != nil {
				writeSSEEvent(w, SSEEvent{Event: "init", Data: sess})
				flusher.Flush()
			}
		}

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				writeSSEEvent(w, event)
				flusher.Flush()

				// Close on terminal events
				if event.Event == "complete" || event.Event == "error" {
					return
				}
			}
		}
	}
}

// writeSSEEvent writes an event in SSE format.
func writeSSEEvent(w http.ResponseWriter, event SSEEvent) {
	if event.ID != "" {
		fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	fmt.Fprintf(w, "event: %s\n", event.Event)

	data, _ := json.Marshal(event.Data)
	fmt.Fprintf(w, "data: %s\n\n", data)
}
