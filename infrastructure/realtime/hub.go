package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"clip-and-ship/domain/model"

	"github.com/gin-gonic/gin"
)

// SSE event names.
const (
	EventVideoIdea   = "video_idea"
	EventOAuthResult = "oauth_result"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Hub fans events out to subscribers keyed by user id or by oauth session.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

func sessionKey(sessionID string) string { return "session:" + sessionID }

// Subscribe registers a buffered channel for the given user. The returned func
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	return h.subscribe(userID)
}

// SubscribeSession registers a channel receiving the oauth result of one session.
func (h *Hub) SubscribeSession(sessionID string) (<-chan Event, func()) {
	return h.subscribe(sessionKey(sessionID))
}

func (h *Hub) subscribe(key string) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan Event]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs := h.subs[key]; subs != nil {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subs, key)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions for a user.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) publish(key string, evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[key] {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
}

// BroadcastVideoIdea pushes a video idea change to its owner.
func (h *Hub) BroadcastVideoIdea(evt model.VideoIdeaEvent) {
	if evt.UserID == "" {
		return
	}
	h.publish(evt.UserID, Event{Name: EventVideoIdea, Data: evt})
}

// BroadcastOAuthResult pushes a consent outcome to the session listeners and,
// when known, to the owning user stream.
func (h *Hub) BroadcastOAuthResult(out model.OAuthOutcome) {
	evt := Event{Name: EventOAuthResult, Data: out}
	if out.SessionID != "" {
		h.publish(sessionKey(out.SessionID), evt)
	}
	if out.UserID != "" {
		h.publish(out.UserID, evt)
	}
}

// Serve streams events of the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch, cancel := h.Subscribe(userID)
	defer cancel()

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := WriteEvent(c.Writer, evt); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

// WriteEvent encodes one event in text/event-stream framing.
func WriteEvent(w interface{ Write([]byte) (int, error) }, evt Event) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, data)
	return err
}
