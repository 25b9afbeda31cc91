package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/utils"

	"golang.org/x/oauth2"
)

const (
	maxTitleLength       = 100
	defaultCategoryID    = "22"
	defaultPrivacyStatus = "public"
)

var (
	defaultTags = []string{"shorts", "ai"}
	extraTags   = []string{"shorts", "ai-generated", "automated"}
)

// IYouTubeUploadUsecase uploads generated videos directly to the user's channel.
type IYouTubeUploadUsecase interface {
	Upload(ctx context.Context, req *dto.YouTubeUploadRequest) (*dto.YouTubeUploadResponse, error)
}

type YouTubeUploadUsecase struct {
	tokens   repository.IOAuthToken
	provider repository.IOAuthProvider
	youtube  repository.IYouTube
	media    repository.IMediaFetcher
	uploads  repository.IYouTubeUpload
	ideas    repository.IVideoIdea
	events   lifecycle
}

func NewYouTubeUploadUsecase(tokens repository.IOAuthToken, provider repository.IOAuthProvider, yt repository.IYouTube,
	media repository.IMediaFetcher, uploads repository.IYouTubeUpload, ideas repository.IVideoIdea,
	hub Broadcaster, publisher repository.IEventPublisher) IYouTubeUploadUsecase {
	return &YouTubeUploadUsecase{
		tokens:   tokens,
		provider: provider,
		youtube:  yt,
		media:    media,
		uploads:  uploads,
		ideas:    ideas,
		events:   lifecycle{hub: hub, publisher: publisher},
	}
}

// UploadTitle shortens a title to the YouTube limit and tags shorts.
func UploadTitle(title string, isShort bool) string {
	clean := utils.Truncate(strings.TrimSpace(title), maxTitleLength, "...")
	if isShort && !strings.Contains(clean, "#Shorts") {
		clean += " #Shorts"
	}
	return clean
}

// UploadTags returns the requested tags, or the defaults, plus the fixed tags.
func UploadTags(tags []string) []string {
	if len(tags) == 0 {
		tags = defaultTags
	}
	out := make([]string, 0, len(tags)+len(extraTags))
	out = append(out, tags...)
	return append(out, extraTags...)
}

func (u *YouTubeUploadUsecase) Upload(ctx context.Context, req *dto.YouTubeUploadRequest) (*dto.YouTubeUploadResponse, error) {
	if req == nil || req.UserID == "" || req.VideoURL == "" || req.Title == "" {
		return nil, invalid("body", "Missing required fields: user_id, video_url, title")
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"user_id":       req.UserID,
		"video_idea_id": req.VideoIdeaID,
	})

	if req.VideoIdeaID != "" {
		if _, err := u.ideas.GetByIDForUser(ctx, req.VideoIdeaID, req.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: video idea %s", ErrNotFound, req.VideoIdeaID)
			}
			return nil, fmt.Errorf("load video idea: %w", err)
		}
	}

	token, err := u.validToken(ctx, req.UserID)
	if err != nil {
		u.fail(ctx, req.VideoIdeaID, err)
		return nil, err
	}

	media, err := u.media.Fetch(ctx, req.VideoURL)
	if err != nil {
		err = fmt.Errorf("download video: %w", err)
		u.fail(ctx, req.VideoIdeaID, err)
		return nil, err
	}
	defer media.Close()

	privacy := req.PrivacyStatus
	if privacy == "" {
		privacy = defaultPrivacyStatus
	}
	meta := &dto.YouTubeVideoUpload{
		Title:         UploadTitle(req.Title, req.IsShort),
		Description:   req.Description,
		Tags:          UploadTags(req.Tags),
		CategoryID:    defaultCategoryID,
		PrivacyStatus: privacy,
	}
	video, err := u.youtube.UploadVideo(ctx, token, meta, media)
	if err != nil {
		err = fmt.Errorf("upload to youtube: %w", err)
		u.fail(ctx, req.VideoIdeaID, err)
		return nil, err
	}
	log.WithField("youtube_video_id", video.ID).Info("Video uploaded to YouTube")

	record := &model.YouTubeUpload{
		UserID:           req.UserID,
		VideoIdeaID:      req.VideoIdeaID,
		YouTubeVideoID:   video.ID,
		YouTubeURL:       video.URL,
		Title:            meta.Title,
		Description:      meta.Description,
		PrivacyStatus:    privacy,
		UploadStatus:     video.UploadStatus,
		ProcessingStatus: video.ProcessingStatus,
	}
	if err := u.uploads.Create(ctx, record); err != nil {
		log.WithField("error", err).Warn("Unable to record youtube upload")
	}

	if req.VideoIdeaID != "" {
		v, err := u.ideas.ApplyPublishResult(ctx, req.VideoIdeaID, model.PublishResult{
			Platform: model.PlatformYouTube,
			Success:  true,
			VideoID:  video.ID,
			URL:      video.URL,
		})
		if err != nil {
			log.WithField("error", err).Error("Unable to mark video idea published")
		} else {
			u.events.emit(ctx, model.EventUpdate, "upload_complete", v)
		}
	}

	return &dto.YouTubeUploadResponse{
		Success:          true,
		VideoID:          video.ID,
		VideoURL:         video.URL,
		Title:            meta.Title,
		PrivacyStatus:    privacy,
		UploadStatus:     video.UploadStatus,
		ProcessingStatus: video.ProcessingStatus,
	}, nil
}

// validToken loads the stored token, refreshing and persisting it when needed.
func (u *YouTubeUploadUsecase) validToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	stored, err := u.tokens.GetYouTubeToken(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReconnectRequired
		}
		return nil, fmt.Errorf("load youtube token: %w", err)
	}
	current := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.ExpiresAt,
	}
	fresh, err := u.provider.Refresh(ctx, current)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err).Warn("YouTube token refresh failed")
		return nil, fmt.Errorf("%w: %v", ErrReconnectRequired, err)
	}
	if fresh.AccessToken != stored.AccessToken {
		stored.AccessToken = fresh.AccessToken
		stored.ExpiresAt = fresh.Expiry
		if fresh.RefreshToken != "" {
			stored.RefreshToken = fresh.RefreshToken
		}
		if err := u.tokens.UpsertYouTubeToken(ctx, stored); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Unable to persist refreshed YouTube token")
		}
		expiry := stored.ExpiresAt
		social := &model.SocialToken{
			UserID:       userID,
			Platform:     model.PlatformYouTube,
			AccessToken:  stored.AccessToken,
			RefreshToken: &stored.RefreshToken,
			ExpiresAt:    &expiry,
		}
		if err := u.tokens.UpsertSocialToken(ctx, social); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Unable to mirror refreshed YouTube token")
		}
	}
	return fresh, nil
}

func (u *YouTubeUploadUsecase) fail(ctx context.Context, videoIdeaID string, cause error) {
	if videoIdeaID == "" {
		return
	}
	v, err := u.ideas.ApplyPublishResult(ctx, videoIdeaID, model.PublishResult{
		Platform:     model.PlatformYouTube,
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		logger.GetLogger().WithField("video_idea_id", videoIdeaID).WithField("error", err).Warn("Unable to record upload failure")
		return
	}
	u.events.emit(ctx, model.EventUpdate, "upload_complete", v)
}
