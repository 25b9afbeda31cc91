package model

import "time"

// Video processing status (coarse pipeline state).
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Approval status (human review gate). Empty means not yet generated.
const (
	ApprovalReadyForApproval = "ready_for_approval"
	ApprovalApproved         = "approved"
	ApprovalRejected         = "rejected"
	ApprovalPublished        = "published"
)

// Per-platform upload status values stored in VideoIdea.UploadStatus.
const (
	UploadPending   = "pending"
	UploadCompleted = "completed"
	UploadFailed    = "failed"
)

// VideoIdea is one user submitted generation request and its lifecycle.
type VideoIdea struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	IdeaText          string            `json:"idea_text"`
	SelectedPlatforms []string          `json:"selected_platforms"`
	UseAIVoice        bool              `json:"use_ai_voice"`
	VoiceFileURL      *string           `json:"voice_file_url,omitempty"`
	Status            string            `json:"status"`
	ApprovalStatus    *string           `json:"approval_status,omitempty"`
	ExecutionID       *string           `json:"execution_id,omitempty"`
	VideoURL          *string           `json:"video_url,omitempty"`
	PreviewVideoURL   *string           `json:"preview_video_url,omitempty"`
	Caption           *string           `json:"caption,omitempty"`
	YouTubeTitle      *string           `json:"youtube_title,omitempty"`
	TikTokTitle       *string           `json:"tiktok_title,omitempty"`
	InstagramTitle    *string           `json:"instagram_title,omitempty"`
	EnvironmentPrompt *string           `json:"environment_prompt,omitempty"`
	SoundPrompt       *string           `json:"sound_prompt,omitempty"`
	YouTubeLink       *string           `json:"youtube_link,omitempty"`
	YouTubeVideoID    *string           `json:"youtube_video_id,omitempty"`
	TikTokLink        *string           `json:"tiktok_link,omitempty"`
	TikTokVideoID     *string           `json:"tiktok_video_id,omitempty"`
	InstagramLink     *string           `json:"instagram_link,omitempty"`
	InstagramMediaID  *string           `json:"instagram_media_id,omitempty"`
	UploadStatus      map[string]string `json:"upload_status"`
	UploadProgress    map[string]int    `json:"upload_progress"`
	UploadErrors      map[string]string `json:"upload_errors"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty"`
	RejectedReason    *string           `json:"rejected_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsReadyForApproval reports whether the idea is waiting on a human decision.
func (v *VideoIdea) IsReadyForApproval() bool {
	return v.ApprovalStatus != nil && *v.ApprovalStatus == ApprovalReadyForApproval
}

// GeneratedVideo carries the fields set when generation produced a reviewable video.
type GeneratedVideo struct {
	ExecutionID       *string
	VideoURL          string
	Caption           *string
	YouTubeTitle      *string
	TikTokTitle       *string
	InstagramTitle    *string
	EnvironmentPrompt *string
	SoundPrompt       *string
}

// PublishResult is the outcome of a platform upload for a video idea.
type PublishResult struct {
	Platform     string
	Success      bool
	VideoID      string
	URL          string
	ErrorMessage string
}
