package handshake

import (
	"context"
	"encoding/json"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/logger"
)

// ResultTTL is how long a stored outcome waits to be picked up.
const ResultTTL = 10 * time.Minute

// Publisher publishes a payload on a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

// KeyWriter stores a value with an expiry.
type KeyWriter interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// HubBroadcaster pushes an outcome to in-process listeners.
type HubBroadcaster interface {
	BroadcastOAuthResult(out model.OAuthOutcome)
}

// Notifier delivers one outcome to every configured sink. Sinks are
// independent: a failing sink is logged and the others still run.
type Notifier struct {
	publisher Publisher
	keys      KeyWriter
	hub       HubBroadcaster
}

// NewNotifier builds a notifier. Any sink may be nil.
func NewNotifier(publisher Publisher, keys KeyWriter, hub HubBroadcaster) *Notifier {
	return &Notifier{publisher: publisher, keys: keys, hub: hub}
}

func (n *Notifier) Notify(ctx context.Context, out model.OAuthOutcome) {
	if out.SessionID == "" && out.UserID == "" {
		return
	}
	if out.Timestamp == 0 {
		out.Timestamp = time.Now().UnixMilli()
	}
	if n.hub != nil {
		n.hub.BroadcastOAuthResult(out)
	}
	if out.SessionID == "" {
		return
	}
	payload, err := json.Marshal(out)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Encode oauth outcome failed")
		return
	}
	log := logger.GetLogger().WithField("session_id", out.SessionID)
	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, BroadcastTopic(out.SessionID), string(payload)); err != nil {
			log.WithField("error", err).Warn("Publish oauth outcome failed")
		}
	}
	if n.keys != nil {
		if err := n.keys.SetWithTTL(ctx, StorageKey(out.SessionID), string(payload), ResultTTL); err != nil {
			log.WithField("error", err).Warn("Store oauth outcome failed")
		}
	}
}
