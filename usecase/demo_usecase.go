package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"

	"github.com/google/uuid"
)

const demoTier = "demo"

// DemoSubmission is the answer of a demo video submission.
type DemoSubmission struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	RequestID       string          `json:"request_id"`
	WebhookResponse json.RawMessage `json:"webhook_response"`
	DemoMode        bool            `json:"demo_mode"`
}

type IDemoUsecase interface {
	Submit(ctx context.Context, req *dto.DemoVideoRequest) (*DemoSubmission, error)
}

type DemoUsecase struct {
	automation repository.IAutomation
}

func NewDemoUsecase(automation repository.IAutomation) *DemoUsecase {
	return &DemoUsecase{automation: automation}
}

func (u *DemoUsecase) Submit(ctx context.Context, req *dto.DemoVideoRequest) (*DemoSubmission, error) {
	if req == nil || req.Title == "" || req.Caption == "" || req.VideoURL == "" {
		return nil, invalid("body", "Missing required fields: title, caption, or video_url")
	}
	requestID := uuid.NewString()
	payload := &dto.DemoWebhookPayload{
		Title:            req.Title,
		Caption:          req.Caption,
		VideoURL:         req.VideoURL,
		UseAIVoice:       req.UseAIVoice,
		IsDemo:           true,
		DemoMode:         true,
		SubscriptionTier: demoTier,
		Platforms:        []string{model.PlatformYouTube},
		RequestID:        requestID,
		SubmittedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if req.VoiceFileURL != "" {
		payload.VoiceFileURL = &req.VoiceFileURL
	}

	log := logger.GetLogger().WithField("request_id", requestID)
	reply, err := u.automation.SubmitDemo(ctx, payload)
	if err != nil {
		if errors.Is(err, repository.ErrWebhookNotConfigured) {
			return nil, configError("Webhook URL not configured")
		}
		log.WithField("error", err).Error("Demo webhook failed")
		return nil, fmt.Errorf("submit demo video: %w", err)
	}
	log.Info("Demo video submitted to webhook")

	return &DemoSubmission{
		Success:         true,
		Message:         "Demo video submitted successfully",
		RequestID:       requestID,
		WebhookResponse: reply,
		DemoMode:        true,
	}, nil
}
