package repository

import (
	"context"
	"io"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"

	"golang.org/x/oauth2"
)

// IOAuthProvider wraps the provider side of the authorization code flow.
type IOAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	// Refresh returns a valid token, refreshing it with the refresh token when expired.
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// IYouTube defines the YouTube Data API operations used on behalf of a user.
type IYouTube interface {
	GetMyChannel(ctx context.Context, token *oauth2.Token) (*model.YouTubeChannel, error)
	UploadVideo(ctx context.Context, token *oauth2.Token, meta *dto.YouTubeVideoUpload, media io.Reader) (*model.YouTubeVideo, error)
}
