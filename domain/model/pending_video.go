package model

import (
	"encoding/json"
	"time"
)

// Pending video status values.
const (
	PendingApproval  = "pending_approval"
	PendingCompleted = "completed"
)

// PendingVideo is a preview produced by the automation before it is bound to an idea.
type PendingVideo struct {
	ID                 string          `json:"id"`
	ExecutionID        string          `json:"execution_id"`
	UserID             string          `json:"user_id"`
	VideoURL           string          `json:"video_url"`
	Idea               string          `json:"idea"`
	Caption            *string         `json:"caption,omitempty"`
	TitlesDescriptions json.RawMessage `json:"titles_descriptions,omitempty"`
	UploadTargets      json.RawMessage `json:"upload_targets"`
	UploadResults      json.RawMessage `json:"upload_results,omitempty"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// YouTubeUpload records one direct upload to YouTube.
type YouTubeUpload struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	VideoIdeaID      string    `json:"video_idea_id"`
	YouTubeVideoID   string    `json:"youtube_video_id"`
	YouTubeURL       string    `json:"youtube_url"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PrivacyStatus    string    `json:"privacy_status"`
	UploadStatus     string    `json:"upload_status"`
	ProcessingStatus string    `json:"processing_status"`
	CreatedAt        time.Time `json:"created_at"`
}

// WebhookLog audits one outbound webhook call.
type WebhookLog struct {
	ID          int64     `json:"id"`
	UserID      *string   `json:"user_id,omitempty"`
	VideoIdeaID *string   `json:"video_idea_id,omitempty"`
	Event       string    `json:"event"`
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	Success     bool      `json:"success"`
	Error       *string   `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// HealthCheckLog audits one health probe of a dependency.
type HealthCheckLog struct {
	ID        int64     `json:"id"`
	Component string    `json:"component"`
	Status    string    `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
	Details   *string   `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
