package dto

import "encoding/json"

// Webhook phases sent by the automation.
const (
	PhasePreview   = "preview"
	PhaseApproval  = "approval"
	PhaseCompleted = "completed"
)

// PlatformText is one per-platform title/description pair.
type PlatformText struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TitlesDescriptions carries generated per-platform metadata.
type TitlesDescriptions struct {
	YouTube           *PlatformText `json:"youtube,omitempty"`
	TikTok            *PlatformText `json:"tiktok,omitempty"`
	Instagram         *PlatformText `json:"instagram,omitempty"`
	EnvironmentPrompt string        `json:"environment_prompt,omitempty"`
	SoundPrompt       string        `json:"sound_prompt,omitempty"`
}

// VideoWebhookRequest is the phase callback body.
type VideoWebhookRequest struct {
	Phase              string              `json:"phase"`
	ExecutionID        string              `json:"execution_id"`
	UserID             string              `json:"user_id,omitempty"`
	VideoURL           string              `json:"video_url,omitempty"`
	Idea               string              `json:"idea,omitempty"`
	Caption            *string             `json:"caption,omitempty"`
	TitlesDescriptions *TitlesDescriptions `json:"titles_descriptions,omitempty"`
	UploadTargets      json.RawMessage     `json:"upload_targets,omitempty"`
	UploadResults      json.RawMessage     `json:"upload_results,omitempty"`
	VideoIdeaID        string              `json:"video_idea_id,omitempty"`
}

// VideoReadyRequest is the legacy single-shot "video ready" callback.
type VideoReadyRequest struct {
	VideoIdeaID       string  `json:"video_idea_id"`
	Idea              string  `json:"idea,omitempty"`
	Caption           *string `json:"caption,omitempty"`
	FinalOutput       string  `json:"final_output"`
	YouTubeTitle      *string `json:"youtube_title,omitempty"`
	TikTokTitle       *string `json:"tiktok_title,omitempty"`
	InstagramTitle    *string `json:"instagram_title,omitempty"`
	EnvironmentPrompt *string `json:"environment_prompt,omitempty"`
	SoundPrompt       *string `json:"sound_prompt,omitempty"`
}

// UploadCompleteRequest reports the outcome of a platform upload.
type UploadCompleteRequest struct {
	VideoIdeaID     string `json:"video_idea_id"`
	YouTubeVideoID  string `json:"youtube_video_id,omitempty"`
	YouTubeVideoURL string `json:"youtube_video_url,omitempty"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// DemoVideoRequest submits a pre-rendered demo video for approval.
type DemoVideoRequest struct {
	Title        string `json:"title"`
	Caption      string `json:"caption"`
	VideoURL     string `json:"video_url"`
	UseAIVoice   bool   `json:"use_ai_voice"`
	VoiceFileURL string `json:"voice_file_url,omitempty"`
}

// DemoWebhookPayload is posted to the approval automation for a demo submission.
type DemoWebhookPayload struct {
	Title            string   `json:"title"`
	Caption          string   `json:"caption"`
	VideoURL         string   `json:"video_url"`
	UseAIVoice       bool     `json:"use_ai_voice"`
	VoiceFileURL     *string  `json:"voice_file_url"`
	IsDemo           bool     `json:"is_demo"`
	DemoMode         bool     `json:"demo_mode"`
	SubscriptionTier string   `json:"subscription_tier"`
	Platforms        []string `json:"platforms"`
	RequestID        string   `json:"request_id"`
	SubmittedAt      string   `json:"submitted_at"`
}

// CompleteReferralRequest credits a referrer after a referred user signs up.
type CompleteReferralRequest struct {
	ReferralCode   string `json:"referral_code"`
	ReferredUserID string `json:"referred_user_id"`
}
