package youtube

import (
	"context"
	"fmt"
	"io"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/configuration"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DefaultScopes are requested when none are configured.
var DefaultScopes = []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope}

// OAuthProvider wraps the Google authorization code flow.
type OAuthProvider struct {
	cfg *oauth2.Config
}

func NewOAuthProvider(c *configuration.YouTubeConfig) *OAuthProvider {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &OAuthProvider{cfg: &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}}
}

// Config exposes the underlying oauth2 configuration.
func (p *OAuthProvider) Config() *oauth2.Config { return p.cfg }

// AuthCodeURL builds the consent URL. Offline access is requested so a refresh
// token is issued, and the account chooser is always shown.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.SetAuthURLParam("include_granted_scopes", "false"),
	)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return tok, nil
}

func (p *OAuthProvider) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := p.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return fresh, nil
}

// Client calls the YouTube Data API on behalf of a user token.
type Client struct {
	opts []option.ClientOption
}

// NewClient builds a client. Extra options are applied to every service,
// e.g. option.WithEndpoint in tests.
func NewClient(opts ...option.ClientOption) *Client {
	return &Client{opts: opts}
}

func (c *Client) service(ctx context.Context, tok *oauth2.Token) (*youtube.Service, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return svc, nil
}

// GetMyChannel returns the channel of the token owner.
func (c *Client) GetMyChannel(ctx context.Context, tok *oauth2.Token) (*model.YouTubeChannel, error) {
	svc, err := c.service(ctx, tok)
	if err != nil {
		return nil, err
	}
	response, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get my channel: %w", err)
	}
	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return nil, fmt.Errorf("no channel found for authenticated user")
	}
	channel := response.Items[0]
	publishedAt, _ := time.Parse(time.RFC3339, channel.Snippet.PublishedAt)
	return &model.YouTubeChannel{
		ID:          channel.Id,
		Title:       channel.Snippet.Title,
		CustomURL:   channel.Snippet.CustomUrl,
		PublishedAt: publishedAt,
	}, nil
}

// UploadVideo inserts a video with a resumable upload.
func (c *Client) UploadVideo(ctx context.Context, tok *oauth2.Token, meta *dto.YouTubeVideoUpload, media io.Reader) (*model.YouTubeVideo, error) {
	svc, err := c.service(ctx, tok)
	if err != nil {
		return nil, err
	}
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.PrivacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}
	response, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(media).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}
	return convertToYouTubeVideo(response), nil
}

func convertToYouTubeVideo(v *youtube.Video) *model.YouTubeVideo {
	out := &model.YouTubeVideo{ID: v.Id, URL: model.WatchURL(v.Id)}
	if v.Snippet != nil {
		out.Title = v.Snippet.Title
	}
	if v.Status != nil {
		out.PrivacyStatus = v.Status.PrivacyStatus
		out.UploadStatus = v.Status.UploadStatus
	}
	if v.ProcessingDetails != nil {
		out.ProcessingStatus = v.ProcessingDetails.ProcessingStatus
	}
	return out
}
