package usecase

import (
	"context"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
)

// Broadcaster pushes a video idea change to the owner's realtime stream.
type Broadcaster interface {
	BroadcastVideoIdea(evt model.VideoIdeaEvent)
}

// lifecycle fans video idea changes out to realtime subscribers and the event
// bus. Both sinks are optional and failures never reach the caller.
type lifecycle struct {
	hub       Broadcaster
	publisher repository.IEventPublisher
}

func (l lifecycle) emit(ctx context.Context, eventType, phase string, v *model.VideoIdea) {
	if v == nil {
		return
	}
	evt := model.NewVideoIdeaEvent(eventType, v)
	evt.Phase = phase
	if l.hub != nil {
		l.hub.BroadcastVideoIdea(evt)
	}
	if l.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.publisher.Publish(pctx, evt); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":         err,
			"video_idea_id": v.ID,
			"event":         eventType,
		}).Warn("Publish lifecycle event failed")
	}
}
