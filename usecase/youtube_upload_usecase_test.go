package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type uploadFixture struct {
	tokens   *MockTokenRepo
	provider *MockOAuthProvider
	yt       *MockYouTube
	media    *MockMediaFetcher
	uploads  *MockUploadRepo
	ideas    *MockVideoIdeaRepo
	hub      *MockBroadcaster
	uc       usecase.IYouTubeUploadUsecase
}

func newUploadFixture() *uploadFixture {
	f := &uploadFixture{
		tokens:   new(MockTokenRepo),
		provider: new(MockOAuthProvider),
		yt:       new(MockYouTube),
		media:    new(MockMediaFetcher),
		uploads:  new(MockUploadRepo),
		ideas:    new(MockVideoIdeaRepo),
		hub:      new(MockBroadcaster),
	}
	f.uc = usecase.NewYouTubeUploadUsecase(f.tokens, f.provider, f.yt, f.media, f.uploads, f.ideas, f.hub, nil)
	return f
}

func TestUploadTitle(t *testing.T) {
	long := strings.Repeat("a", 120)
	got := usecase.UploadTitle(long, false)
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "Cats #Shorts", usecase.UploadTitle("Cats", true))
	assert.Equal(t, "Cats #Shorts", usecase.UploadTitle("Cats #Shorts", true))
}

func TestUploadTags(t *testing.T) {
	assert.Equal(t, []string{"shorts", "ai", "shorts", "ai-generated", "automated"}, usecase.UploadTags(nil))
	assert.Equal(t, []string{"cats", "shorts", "ai-generated", "automated"}, usecase.UploadTags([]string{"cats"}))
}

func TestUpload_RefreshesAndRecords(t *testing.T) {
	f := newUploadFixture()
	ctx := context.Background()
	stored := &model.YouTubeToken{UserID: testUserID, AccessToken: "old", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Minute)}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	body := io.NopCloser(strings.NewReader("video-bytes"))

	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(&model.VideoIdea{ID: "idea-1", UserID: testUserID}, nil)
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(stored, nil)
	f.provider.On("Refresh", ctx, mock.MatchedBy(func(tok *oauth2.Token) bool { return tok.AccessToken == "old" })).Return(fresh, nil)
	f.tokens.On("UpsertYouTubeToken", ctx, mock.MatchedBy(func(tok *model.YouTubeToken) bool { return tok.AccessToken == "new" })).Return(nil)
	f.tokens.On("UpsertSocialToken", ctx, mock.MatchedBy(func(tok *model.SocialToken) bool {
		return tok.Platform == model.PlatformYouTube && tok.AccessToken == "new" && tok.ExpiresAt.Equal(fresh.Expiry)
	})).Return(nil)
	f.media.On("Fetch", ctx, "https://cdn/v.mp4").Return(body, nil)
	f.yt.On("UploadVideo", ctx, fresh, mock.MatchedBy(func(m *dto.YouTubeVideoUpload) bool {
		return m.Title == "Cats #Shorts" && m.PrivacyStatus == "public" && m.CategoryID == "22"
	}), body).Return(&model.YouTubeVideo{ID: "yt1", URL: model.WatchURL("yt1"), UploadStatus: "uploaded"}, nil)
	f.uploads.On("Create", ctx, mock.MatchedBy(func(u *model.YouTubeUpload) bool { return u.YouTubeVideoID == "yt1" })).Return(nil)
	f.ideas.On("ApplyPublishResult", ctx, "idea-1", model.PublishResult{
		Platform: model.PlatformYouTube, Success: true, VideoID: "yt1", URL: model.WatchURL("yt1"),
	}).Return(&model.VideoIdea{ID: "idea-1"}, nil)
	f.hub.On("BroadcastVideoIdea", mock.Anything).Return()

	res, err := f.uc.Upload(ctx, &dto.YouTubeUploadRequest{
		VideoIdeaID: "idea-1", UserID: testUserID, VideoURL: "https://cdn/v.mp4", Title: "Cats", IsShort: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "yt1", res.VideoID)
	f.tokens.AssertExpectations(t)
	f.uploads.AssertExpectations(t)
	f.ideas.AssertExpectations(t)
}

func TestUpload_MissingTokenRequiresReconnect(t *testing.T) {
	f := newUploadFixture()
	ctx := context.Background()
	f.ideas.On("GetByIDForUser", ctx, "idea-2", testUserID).Return(&model.VideoIdea{ID: "idea-2", UserID: testUserID}, nil)
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(nil, repository.ErrNotFound)
	f.ideas.On("ApplyPublishResult", ctx, "idea-2", mock.MatchedBy(func(r model.PublishResult) bool {
		return !r.Success && r.ErrorMessage == usecase.ErrReconnectRequired.Error()
	})).Return(&model.VideoIdea{ID: "idea-2"}, nil)
	f.hub.On("BroadcastVideoIdea", mock.Anything).Return()

	_, err := f.uc.Upload(ctx, &dto.YouTubeUploadRequest{VideoIdeaID: "idea-2", UserID: testUserID, VideoURL: "u", Title: "t"})

	assert.ErrorIs(t, err, usecase.ErrReconnectRequired)
	f.media.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestUpload_ForeignVideoIdeaIsNotTouched(t *testing.T) {
	f := newUploadFixture()
	ctx := context.Background()
	f.ideas.On("GetByIDForUser", ctx, "other-idea", testUserID).Return(nil, repository.ErrNotFound)

	_, err := f.uc.Upload(ctx, &dto.YouTubeUploadRequest{VideoIdeaID: "other-idea", UserID: testUserID, VideoURL: "u", Title: "t"})

	assert.ErrorIs(t, err, usecase.ErrNotFound)
	f.tokens.AssertNotCalled(t, "GetYouTubeToken", mock.Anything, mock.Anything)
	f.ideas.AssertNotCalled(t, "ApplyPublishResult", mock.Anything, mock.Anything, mock.Anything)
	f.media.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestUpload_RefreshFailure(t *testing.T) {
	f := newUploadFixture()
	ctx := context.Background()
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(&model.YouTubeToken{AccessToken: "a"}, nil)
	f.provider.On("Refresh", ctx, mock.Anything).Return(nil, errors.New("invalid_grant"))

	_, err := f.uc.Upload(ctx, &dto.YouTubeUploadRequest{UserID: testUserID, VideoURL: "u", Title: "t"})

	assert.ErrorIs(t, err, usecase.ErrReconnectRequired)
}

func TestUpload_Validation(t *testing.T) {
	f := newUploadFixture()

	_, err := f.uc.Upload(context.Background(), &dto.YouTubeUploadRequest{UserID: testUserID})

	var ve *usecase.ValidationError
	assert.ErrorAs(t, err, &ve)
}
