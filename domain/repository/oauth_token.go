package repository

import (
	"context"

	"clip-and-ship/domain/model"
)

// IOAuthToken stores platform credentials.
type IOAuthToken interface {
	UpsertYouTubeToken(ctx context.Context, t *model.YouTubeToken) error
	GetYouTubeToken(ctx context.Context, userID string) (*model.YouTubeToken, error)
	DeleteYouTubeToken(ctx context.Context, userID string) (int64, error)

	UpsertSocialToken(ctx context.Context, t *model.SocialToken) error
	ListSocialTokens(ctx context.Context, userID string) ([]model.SocialToken, error)
	DeleteSocialToken(ctx context.Context, userID, platform string) (int64, error)
}
