package usecase_test

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

type MockVideoIdeaRepo struct{ mock.Mock }

func ideaOrNil(args mock.Arguments) (*model.VideoIdea, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoIdea), args.Error(1)
}

func (m *MockVideoIdeaRepo) GetByID(ctx context.Context, id string) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id))
}

func (m *MockVideoIdeaRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id, userID))
}

func (m *MockVideoIdeaRepo) GetByExecutionID(ctx context.Context, executionID string) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, executionID))
}

func (m *MockVideoIdeaRepo) GetMostRecent(ctx context.Context) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx))
}

func (m *MockVideoIdeaRepo) ListByUser(ctx context.Context, userID string) ([]model.VideoIdea, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoIdea), args.Error(1)
}

func (m *MockVideoIdeaRepo) MarkGenerated(ctx context.Context, id string, gen model.GeneratedVideo) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id, gen))
}

func (m *MockVideoIdeaRepo) UpdateStatus(ctx context.Context, id, status string, uploadErrors map[string]string) error {
	return m.Called(ctx, id, status, uploadErrors).Error(0)
}

func (m *MockVideoIdeaRepo) UpdateIdea(ctx context.Context, id, userID string, ideaText *string, platforms []string) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id, userID, ideaText, platforms))
}

func (m *MockVideoIdeaRepo) Approve(ctx context.Context, id, userID string, platforms []string, approvedAt time.Time) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id, userID, platforms, approvedAt))
}

func (m *MockVideoIdeaRepo) ApplyPublishResult(ctx context.Context, id string, result model.PublishResult) (*model.VideoIdea, error) {
	return ideaOrNil(m.Called(ctx, id, result))
}

func (m *MockVideoIdeaRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoIdeaRepo) DeleteRejected(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPendingVideoRepo struct{ mock.Mock }

func (m *MockPendingVideoRepo) Create(ctx context.Context, v *model.PendingVideo) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockPendingVideoRepo) CompleteByExecutionID(ctx context.Context, executionID string, uploadResults json.RawMessage) (bool, error) {
	args := m.Called(ctx, executionID, uploadResults)
	return args.Bool(0), args.Error(1)
}

type MockProfileRepo struct{ mock.Mock }

func profileOrNil(args mock.Arguments) (*model.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return profileOrNil(m.Called(ctx, id))
}

func (m *MockProfileRepo) GetByReferralCode(ctx context.Context, code string) (*model.Profile, error) {
	return profileOrNil(m.Called(ctx, code))
}

func (m *MockProfileRepo) SetReferralCode(ctx context.Context, id, code string) (string, error) {
	args := m.Called(ctx, id, code)
	return args.String(0), args.Error(1)
}

func (m *MockProfileRepo) RecordReferral(ctx context.Context, referrerID, referredID string, bonus int) (*model.Profile, error) {
	return profileOrNil(m.Called(ctx, referrerID, referredID, bonus))
}

type MockCreditLedger struct{ mock.Mock }

func (m *MockCreditLedger) DebitForIdea(ctx context.Context, idea *model.VideoIdea, description string) (int, error) {
	args := m.Called(ctx, idea, description)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditLedger) ListTransactions(ctx context.Context, userID string, limit int) ([]model.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CreditTransaction), args.Error(1)
}

type MockTokenRepo struct{ mock.Mock }

func (m *MockTokenRepo) UpsertYouTubeToken(ctx context.Context, t *model.YouTubeToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTokenRepo) GetYouTubeToken(ctx context.Context, userID string) (*model.YouTubeToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.YouTubeToken), args.Error(1)
}

func (m *MockTokenRepo) DeleteYouTubeToken(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenRepo) UpsertSocialToken(ctx context.Context, t *model.SocialToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTokenRepo) ListSocialTokens(ctx context.Context, userID string) ([]model.SocialToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SocialToken), args.Error(1)
}

func (m *MockTokenRepo) DeleteSocialToken(ctx context.Context, userID, platform string) (int64, error) {
	args := m.Called(ctx, userID, platform)
	return args.Get(0).(int64), args.Error(1)
}

type MockAutomation struct{ mock.Mock }

func (m *MockAutomation) GenerationConfigured() bool { return m.Called().Bool(0) }

func (m *MockAutomation) PublishConfigured() bool { return m.Called().Bool(0) }

func (m *MockAutomation) TriggerGeneration(ctx context.Context, req *dto.GenerationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAutomation) TriggerPublish(ctx context.Context, req *dto.PublishRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAutomation) SubmitDemo(ctx context.Context, payload *dto.DemoWebhookPayload) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, evt model.VideoIdeaEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) BroadcastVideoIdea(evt model.VideoIdeaEvent) { m.Called(evt) }

type MockOAuthProvider struct{ mock.Mock }

func (m *MockOAuthProvider) AuthCodeURL(state string) string { return m.Called(state).String(0) }

func (m *MockOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockOAuthProvider) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

type MockYouTube struct{ mock.Mock }

func (m *MockYouTube) GetMyChannel(ctx context.Context, token *oauth2.Token) (*model.YouTubeChannel, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.YouTubeChannel), args.Error(1)
}

func (m *MockYouTube) UploadVideo(ctx context.Context, token *oauth2.Token, meta *dto.YouTubeVideoUpload, media io.Reader) (*model.YouTubeVideo, error) {
	args := m.Called(ctx, token, meta, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.YouTubeVideo), args.Error(1)
}

type MockUploadRepo struct{ mock.Mock }

func (m *MockUploadRepo) Create(ctx context.Context, u *model.YouTubeUpload) error {
	return m.Called(ctx, u).Error(0)
}

type MockAuditLog struct{ mock.Mock }

func (m *MockAuditLog) RecordWebhook(ctx context.Context, l *model.WebhookLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockAuditLog) RecordHealthCheck(ctx context.Context, l *model.HealthCheckLog) error {
	return m.Called(ctx, l).Error(0)
}

type MockMediaFetcher struct{ mock.Mock }

func (m *MockMediaFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type MockVoiceStore struct{ mock.Mock }

func (m *MockVoiceStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

func ptr[T any](v T) *T { return &v }
