package repository

import (
	"context"
	"encoding/json"
	"io"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
)

// IAutomation calls the external generation and publishing workflows.
type IAutomation interface {
	GenerationConfigured() bool
	PublishConfigured() bool
	TriggerGeneration(ctx context.Context, req *dto.GenerationRequest) error
	TriggerPublish(ctx context.Context, req *dto.PublishRequest) error
	// SubmitDemo posts to the approval workflow and returns its decoded reply.
	SubmitDemo(ctx context.Context, payload *dto.DemoWebhookPayload) (json.RawMessage, error)
}

// IEventPublisher publishes video lifecycle events to a message bus.
type IEventPublisher interface {
	Publish(ctx context.Context, evt model.VideoIdeaEvent) error
}

// IVoiceStore stores uploaded voice files and returns their public URL.
type IVoiceStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// IMediaFetcher downloads a generated video for re-upload.
type IMediaFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
