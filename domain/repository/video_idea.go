package repository

import (
	"context"
	"encoding/json"
	"time"

	"clip-and-ship/domain/model"
)

// IVideoIdea persists video ideas and their lifecycle transitions.
type IVideoIdea interface {
	GetByID(ctx context.Context, id string) (*model.VideoIdea, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*model.VideoIdea, error)
	GetByExecutionID(ctx context.Context, executionID string) (*model.VideoIdea, error)
	GetMostRecent(ctx context.Context) (*model.VideoIdea, error)
	ListByUser(ctx context.Context, userID string) ([]model.VideoIdea, error)

	// MarkGenerated moves an idea to completed / ready_for_approval with the generated artifact.
	MarkGenerated(ctx context.Context, id string, gen model.GeneratedVideo) (*model.VideoIdea, error)
	// UpdateStatus sets the coarse status and merges uploadErrors into upload_errors.
	UpdateStatus(ctx context.Context, id, status string, uploadErrors map[string]string) error
	UpdateIdea(ctx context.Context, id, userID string, ideaText *string, platforms []string) (*model.VideoIdea, error)
	Approve(ctx context.Context, id, userID string, platforms []string, approvedAt time.Time) (*model.VideoIdea, error)
	// ApplyPublishResult records a terminal upload outcome for one platform.
	ApplyPublishResult(ctx context.Context, id string, result model.PublishResult) (*model.VideoIdea, error)

	Delete(ctx context.Context, id, userID string) (bool, error)
	DeleteRejected(ctx context.Context) (int64, error)
}

// IPendingVideo persists preview phase videos.
type IPendingVideo interface {
	Create(ctx context.Context, v *model.PendingVideo) error
	CompleteByExecutionID(ctx context.Context, executionID string, uploadResults json.RawMessage) (bool, error)
}

// IYouTubeUpload persists direct upload records.
type IYouTubeUpload interface {
	Create(ctx context.Context, u *model.YouTubeUpload) error
}

// IAuditLog writes audit rows nobody reads back in process.
type IAuditLog interface {
	RecordWebhook(ctx context.Context, l *model.WebhookLog) error
	RecordHealthCheck(ctx context.Context, l *model.HealthCheckLog) error
}
