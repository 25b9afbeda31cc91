package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/infrastructure/utils"
)

// IVideoWebhookUsecase handles the callbacks of the generation automation.
type IVideoWebhookUsecase interface {
	// HandlePhase validates and applies one phase callback.
	HandlePhase(ctx context.Context, req *dto.VideoWebhookRequest) error
	VideoReady(ctx context.Context, req *dto.VideoReadyRequest) (*model.VideoIdea, error)
	// CompleteUpload applies a platform upload outcome and returns the completion id.
	CompleteUpload(ctx context.Context, req *dto.UploadCompleteRequest) (string, error)
}

// WebhookOptions tunes the correlation of approval callbacks.
type WebhookOptions struct {
	FallbackTestUserID string
	// RecencyFallback picks the newest idea when an approval callback cannot be correlated.
	RecencyFallback bool
}

type VideoWebhookUsecase struct {
	ideas   repository.IVideoIdea
	pending repository.IPendingVideo
	events  lifecycle
	metrics *metrics.Metrics
	opts    WebhookOptions
}

func NewVideoWebhookUsecase(ideas repository.IVideoIdea, pending repository.IPendingVideo, hub Broadcaster,
	publisher repository.IEventPublisher, m *metrics.Metrics, opts WebhookOptions) IVideoWebhookUsecase {
	return &VideoWebhookUsecase{
		ideas:   ideas,
		pending: pending,
		events:  lifecycle{hub: hub, publisher: publisher},
		metrics: m,
		opts:    opts,
	}
}

// ValidateWebhook checks a phase callback without touching storage.
func ValidateWebhook(req *dto.VideoWebhookRequest) error {
	if req == nil {
		return invalid("body", "request body is required")
	}
	if strings.TrimSpace(req.ExecutionID) == "" {
		return invalid("execution_id", "execution_id is required")
	}
	switch req.Phase {
	case dto.PhasePreview:
		if strings.TrimSpace(req.UserID) != "" && !utils.IsUUID(req.UserID) {
			return invalid("user_id", "user_id must be a valid UUID")
		}
		if strings.TrimSpace(req.VideoURL) == "" {
			return invalid("video_url", "video_url is required for preview phase")
		}
		if strings.TrimSpace(req.Idea) == "" {
			return invalid("idea", "idea is required for preview phase")
		}
	case dto.PhaseApproval:
		if strings.TrimSpace(req.VideoURL) == "" {
			return invalid("video_url", "video_url is required for approval phase")
		}
	case dto.PhaseCompleted:
	default:
		return invalid("phase", "Invalid phase: %s", req.Phase)
	}
	return nil
}

func (u *VideoWebhookUsecase) HandlePhase(ctx context.Context, req *dto.VideoWebhookRequest) (err error) {
	phase := "unknown"
	if req != nil {
		phase = req.Phase
	}
	defer func() { u.observe(phase, err) }()

	if err = ValidateWebhook(req); err != nil {
		return err
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"phase":        req.Phase,
		"execution_id": req.ExecutionID,
	})
	log.Info("Video webhook received")

	switch req.Phase {
	case dto.PhaseApproval:
		return u.handleApproval(ctx, req)
	case dto.PhasePreview:
		return u.handlePreview(ctx, req)
	default:
		return u.handleCompleted(ctx, req)
	}
}

func (u *VideoWebhookUsecase) handleApproval(ctx context.Context, req *dto.VideoWebhookRequest) error {
	target, err := u.resolveApprovalTarget(ctx, req)
	if err != nil {
		return err
	}

	executionID := req.ExecutionID
	gen := model.GeneratedVideo{
		ExecutionID: &executionID,
		VideoURL:    req.VideoURL,
		Caption:     nonEmpty(req.Caption),
	}
	if td := req.TitlesDescriptions; td != nil {
		gen.YouTubeTitle = titleOf(td.YouTube)
		gen.TikTokTitle = titleOf(td.TikTok)
		gen.InstagramTitle = titleOf(td.Instagram)
		gen.EnvironmentPrompt = strPtr(td.EnvironmentPrompt)
		gen.SoundPrompt = strPtr(td.SoundPrompt)
	}

	updated, err := u.ideas.MarkGenerated(ctx, target.ID, gen)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: video idea %s", ErrNotFound, target.ID)
		}
		return fmt.Errorf("update video idea: %w", err)
	}
	logger.GetLogger().WithField("video_idea_id", updated.ID).Info("Video idea ready for approval")
	u.events.emit(ctx, model.EventUpdate, dto.PhaseApproval, updated)
	return nil
}

// resolveApprovalTarget correlates an approval callback with a video idea:
// explicit id first, then execution id, then optionally the newest idea.
func (u *VideoWebhookUsecase) resolveApprovalTarget(ctx context.Context, req *dto.VideoWebhookRequest) (*model.VideoIdea, error) {
	if id := strings.TrimSpace(req.VideoIdeaID); id != "" {
		v, err := u.ideas.GetByID(ctx, id)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup video idea: %w", err)
		}
		logger.GetLogger().WithField("video_idea_id", id).Warn("Approval callback names an unknown video idea")
	}

	v, err := u.ideas.GetByExecutionID(ctx, req.ExecutionID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup video idea by execution: %w", err)
	}

	if !u.opts.RecencyFallback {
		return nil, fmt.Errorf("%w: no video idea for execution %s", ErrNotFound, req.ExecutionID)
	}
	v, err = u.ideas.GetMostRecent(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: No video idea found to update", ErrNotFound)
		}
		return nil, fmt.Errorf("lookup most recent video idea: %w", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"execution_id":  req.ExecutionID,
		"video_idea_id": v.ID,
	}).Warn("Approval callback not correlated, using most recent video idea")
	return v, nil
}

func (u *VideoWebhookUsecase) handlePreview(ctx context.Context, req *dto.VideoWebhookRequest) error {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		fallback := u.opts.FallbackTestUserID
		if fallback == "" {
			return invalid("user_id", "user_id is required for preview phase")
		}
		if !utils.IsUUID(fallback) {
			return configError("Fallback test user ID is not a valid UUID")
		}
		userID = fallback
	}

	var titles json.RawMessage
	if req.TitlesDescriptions != nil {
		b, err := json.Marshal(req.TitlesDescriptions)
		if err != nil {
			return fmt.Errorf("encode titles: %w", err)
		}
		titles = b
	}
	pv := &model.PendingVideo{
		ExecutionID:        req.ExecutionID,
		UserID:             userID,
		VideoURL:           req.VideoURL,
		Idea:               req.Idea,
		Caption:            nonEmpty(req.Caption),
		TitlesDescriptions: titles,
		UploadTargets:      req.UploadTargets,
		Status:             model.PendingApproval,
	}
	if err := u.pending.Create(ctx, pv); err != nil {
		return fmt.Errorf("insert pending video: %w", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"pending_video_id": pv.ID,
		"user_id":          userID,
	}).Info("Pending video stored")
	return nil
}

func (u *VideoWebhookUsecase) handleCompleted(ctx context.Context, req *dto.VideoWebhookRequest) error {
	found, err := u.pending.CompleteByExecutionID(ctx, req.ExecutionID, req.UploadResults)
	if err != nil {
		return fmt.Errorf("complete pending video: %w", err)
	}
	if !found {
		logger.GetLogger().WithField("execution_id", req.ExecutionID).Warn("No pending video for completed callback")
	}
	return nil
}

func (u *VideoWebhookUsecase) VideoReady(ctx context.Context, req *dto.VideoReadyRequest) (v *model.VideoIdea, err error) {
	defer func() { u.observe("video_ready", err) }()
	if req == nil || strings.TrimSpace(req.VideoIdeaID) == "" {
		return nil, invalid("video_idea_id", "Missing required fields: video_idea_id and final_output")
	}
	if strings.TrimSpace(req.FinalOutput) == "" {
		return nil, invalid("final_output", "Missing required fields: video_idea_id and final_output")
	}
	v, err = u.ideas.MarkGenerated(ctx, req.VideoIdeaID, model.GeneratedVideo{
		VideoURL:          req.FinalOutput,
		Caption:           nonEmpty(req.Caption),
		YouTubeTitle:      nonEmpty(req.YouTubeTitle),
		TikTokTitle:       nonEmpty(req.TikTokTitle),
		InstagramTitle:    nonEmpty(req.InstagramTitle),
		EnvironmentPrompt: nonEmpty(req.EnvironmentPrompt),
		SoundPrompt:       nonEmpty(req.SoundPrompt),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video idea %s", ErrNotFound, req.VideoIdeaID)
		}
		return nil, fmt.Errorf("update video idea: %w", err)
	}
	u.events.emit(ctx, model.EventUpdate, "video_ready", v)
	return v, nil
}

func (u *VideoWebhookUsecase) CompleteUpload(ctx context.Context, req *dto.UploadCompleteRequest) (completionID string, err error) {
	completionID = utils.ShortID()
	defer func() { u.observe("upload_complete", err) }()
	if req == nil || strings.TrimSpace(req.VideoIdeaID) == "" {
		return completionID, invalid("video_idea_id", "video_idea_id is required")
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"completion_id": completionID,
		"video_idea_id": req.VideoIdeaID,
		"status":        req.Status,
	})

	result := model.PublishResult{Platform: model.PlatformYouTube}
	if req.Status == "success" && req.YouTubeVideoURL != "" {
		result.Success = true
		result.URL = req.YouTubeVideoURL
		result.VideoID = req.YouTubeVideoID
	} else {
		result.ErrorMessage = req.ErrorMessage
		if result.ErrorMessage == "" {
			result.ErrorMessage = "Upload failed"
		}
	}

	v, err := u.ideas.ApplyPublishResult(ctx, req.VideoIdeaID, result)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return completionID, fmt.Errorf("%w: video idea %s", ErrNotFound, req.VideoIdeaID)
		}
		return completionID, fmt.Errorf("apply upload result: %w", err)
	}
	log.WithField("success", result.Success).Info("Upload completion applied")
	u.events.emit(ctx, model.EventUpdate, "upload_complete", v)
	return completionID, nil
}

func (u *VideoWebhookUsecase) observe(phase string, err error) {
	if u.metrics == nil {
		return
	}
	result := "success"
	var ve *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &ve):
		result = "invalid"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	u.metrics.WebhookPhases.WithLabelValues(phase, result).Inc()
}

func titleOf(t *dto.PlatformText) *string {
	if t == nil {
		return nil
	}
	return strPtr(t.Title)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
