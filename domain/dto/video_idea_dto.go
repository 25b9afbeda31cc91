package dto

// SubmitVideoRequest is the body of a new video idea submission.
type SubmitVideoRequest struct {
	IdeaText          string   `json:"idea_text"`
	SelectedPlatforms []string `json:"selected_platforms"`
	UseAIVoice        any      `json:"use_ai_voice"`
	VoiceFileURL      string   `json:"voice_file_url,omitempty"`
}

// SubmitVideoResponse is returned after the credit was debited and generation triggered.
type SubmitVideoResponse struct {
	Success          bool   `json:"success"`
	VideoIdeaID      string `json:"video_idea_id"`
	RemainingCredits int    `json:"remaining_credits"`
}

// UpdateVideoIdeaRequest edits an idea owned by the caller.
type UpdateVideoIdeaRequest struct {
	IdeaText          *string  `json:"idea_text,omitempty"`
	SelectedPlatforms []string `json:"selected_platforms,omitempty"`
}

// ApprovalRequest approves or rejects a generated video.
type ApprovalRequest struct {
	Approved          bool     `json:"approved"`
	RejectionReason   string   `json:"rejection_reason,omitempty"`
	SelectedPlatforms []string `json:"selected_platforms,omitempty"`
}

// YouTubeUploadRequest asks the server to upload a video directly to YouTube.
type YouTubeUploadRequest struct {
	VideoIdeaID   string   `json:"video_idea_id"`
	UserID        string   `json:"user_id"`
	VideoURL      string   `json:"video_url"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PrivacyStatus string   `json:"privacy_status,omitempty"`
	IsShort       bool     `json:"is_short,omitempty"`
}

// YouTubeUploadResponse is the result of a direct upload.
type YouTubeUploadResponse struct {
	Success          bool   `json:"success"`
	VideoID          string `json:"video_id"`
	VideoURL         string `json:"video_url"`
	Title            string `json:"title"`
	PrivacyStatus    string `json:"privacy_status"`
	UploadStatus     string `json:"upload_status"`
	ProcessingStatus string `json:"processing_status"`
}

// PublishRequest is posted to the publish automation after approval.
type PublishRequest struct {
	VideoIdeaID      string            `json:"video_idea_id"`
	UserID           string            `json:"user_id"`
	VideoURL         string            `json:"video_url"`
	Caption          string            `json:"caption,omitempty"`
	Titles           map[string]string `json:"titles,omitempty"`
	Platforms        []string          `json:"platforms"`
	SubscriptionTier string            `json:"subscription_tier"`
	SocialAccounts   []SocialAccount   `json:"social_accounts"`
	CallbackURL      string            `json:"callback_url,omitempty"`
}

// SocialAccount is a connected account handed to the publish automation.
type SocialAccount struct {
	Platform     string `json:"platform"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Username     string `json:"username,omitempty"`
}

// GenerationRequest is posted to the generation automation after submission.
type GenerationRequest struct {
	VideoIdeaID       string   `json:"video_idea_id"`
	UserID            string   `json:"user_id"`
	IdeaText          string   `json:"idea_text"`
	SelectedPlatforms []string `json:"selected_platforms"`
	UseAIVoice        bool     `json:"use_ai_voice"`
	VoiceFileURL      string   `json:"voice_file_url,omitempty"`
	SubscriptionTier  string   `json:"subscription_tier"`
	CallbackURL       string   `json:"callback_url,omitempty"`
	Timestamp         string   `json:"timestamp"`
}
