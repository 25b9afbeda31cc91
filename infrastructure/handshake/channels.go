package handshake

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/realtime"
)

// BroadcastTopic is the pub/sub channel carrying the outcome of a session.
func BroadcastTopic(sessionID string) string { return "youtube_auth_" + sessionID }

// StorageKey is the key holding the outcome of a session until it is read.
func StorageKey(sessionID string) string { return "youtube_auth_result_" + sessionID }

func decodeOutcome(payload string) (model.OAuthOutcome, bool) {
	var out model.OAuthOutcome
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Discarding malformed oauth outcome")
		return out, false
	}
	return out, true
}

// Subscriber streams the payloads published on a channel.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}

// BroadcastChannel listens on the pub/sub topic of the session.
type BroadcastChannel struct {
	sub Subscriber
}

func NewBroadcastChannel(sub Subscriber) *BroadcastChannel { return &BroadcastChannel{sub: sub} }

func (c *BroadcastChannel) Name() string { return "broadcast" }

func (c *BroadcastChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	msgs, err := c.sub.Subscribe(ctx, BroadcastTopic(sessionID))
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			if out, ok := decodeOutcome(payload); ok {
				deliver(out)
			}
		}
	}
}

// KeyReader reads and removes a key.
type KeyReader interface {
	GetDel(ctx context.Context, key string) (string, bool, error)
}

// StorageChannel polls the result key of the session and removes it once read.
type StorageChannel struct {
	store    KeyReader
	interval time.Duration
}

func NewStorageChannel(store KeyReader, interval time.Duration) *StorageChannel {
	if interval <= 0 {
		interval = time.Second
	}
	return &StorageChannel{store: store, interval: interval}
}

func (c *StorageChannel) Name() string { return "storage" }

func (c *StorageChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	key := StorageKey(sessionID)
	for {
		val, found, err := c.store.GetDel(ctx, key)
		if err != nil && ctx.Err() == nil {
			logger.GetLogger().WithField("error", err).Debug("Storage channel read failed")
		}
		if found {
			if out, ok := decodeOutcome(val); ok {
				deliver(out)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// HubChannel receives outcomes pushed through the in-process realtime hub.
type HubChannel struct {
	hub *realtime.Hub
}

func NewHubChannel(hub *realtime.Hub) *HubChannel { return &HubChannel{hub: hub} }

func (c *HubChannel) Name() string { return "message" }

func (c *HubChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	events, unsubscribe := c.hub.SubscribeSession(sessionID)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if out, ok := evt.Data.(model.OAuthOutcome); ok {
				deliver(out)
			}
		}
	}
}

// SSEChannel reads oauth_result events from a remote event stream.
type SSEChannel struct {
	client  *http.Client
	url     string
	headers http.Header
}

func NewSSEChannel(client *http.Client, url string, headers http.Header) *SSEChannel {
	if client == nil {
		client = &http.Client{}
	}
	return &SSEChannel{client: client, url: url, headers: headers}
}

func (c *SSEChannel) Name() string { return "message" }

func (c *SSEChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open event stream: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && event == realtime.EventOAuthResult:
			if out, ok := decodeOutcome(strings.TrimSpace(strings.TrimPrefix(line, "data:"))); ok && out.SessionID == sessionID {
				deliver(out)
			}
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return scanner.Err()
}

// ConnectionStatus is what the poll channel learns about the connection.
type ConnectionStatus struct {
	Connected   bool
	ChannelName string
	UpdatedAt   time.Time
}

// StatusFunc queries the current connection state.
type StatusFunc func(ctx context.Context) (ConnectionStatus, error)

// PollChannel re-queries the connection status. A connection counts only when
// it was written after the flow started, so a stale token cannot complete it.
type PollChannel struct {
	status   StatusFunc
	interval time.Duration
	now      func() time.Time
}

func NewPollChannel(status StatusFunc, interval time.Duration) *PollChannel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PollChannel{status: status, interval: interval, now: time.Now}
}

func (c *PollChannel) Name() string { return "poll" }

func (c *PollChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	started := c.now()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		st, err := c.status(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.GetLogger().WithField("error", err).Debug("Status poll failed")
			}
			continue
		}
		if st.Connected && !st.UpdatedAt.Before(started) {
			deliver(model.OAuthOutcome{SessionID: sessionID, Success: true, ChannelName: st.ChannelName, Timestamp: st.UpdatedAt.UnixMilli()})
		}
	}
}
