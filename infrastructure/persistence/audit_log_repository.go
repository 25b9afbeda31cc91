package persistence

import (
	"context"
	"database/sql"
	"time"

	"clip-and-ship/domain/model"
)

type AuditLogRepository struct{ db *sql.DB }

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository { return &AuditLogRepository{db: db} }

func (r *AuditLogRepository) RecordWebhook(ctx context.Context, l *model.WebhookLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO webhook_logs (user_id, video_idea_id, event, url, status_code, success, error, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		nullString(l.UserID), nullString(l.VideoIdeaID), l.Event, l.URL, l.StatusCode, l.Success, nullString(l.Error), l.DurationMS, l.CreatedAt)
	return err
}

func (r *AuditLogRepository) RecordHealthCheck(ctx context.Context, l *model.HealthCheckLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO health_check_logs (component, status, latency_ms, details, created_at) VALUES ($1,$2,$3,$4,$5)`,
		l.Component, l.Status, l.LatencyMS, nullString(l.Details), l.CreatedAt)
	return err
}

type YouTubeUploadRepository struct{ db *sql.DB }

func NewYouTubeUploadRepository(db *sql.DB) *YouTubeUploadRepository {
	return &YouTubeUploadRepository{db: db}
}

func (r *YouTubeUploadRepository) Create(ctx context.Context, u *model.YouTubeUpload) error {
	u.CreatedAt = time.Now().UTC()
	var ideaID any
	if u.VideoIdeaID != "" {
		ideaID = u.VideoIdeaID
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO youtube_uploads (user_id, video_idea_id, youtube_video_id, youtube_url, title, description, privacy_status, upload_status, processing_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		u.UserID, ideaID, u.YouTubeVideoID, u.YouTubeURL, u.Title, u.Description, u.PrivacyStatus, u.UploadStatus, u.ProcessingStatus, u.CreatedAt)
	return row.Scan(&u.ID)
}
