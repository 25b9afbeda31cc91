package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/configuration"
	"clip-and-ship/infrastructure/handshake"
	"clip-and-ship/infrastructure/oauthstate"
	"clip-and-ship/usecase"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const stateSecret = "state-secret-for-tests"

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, out model.OAuthOutcome) { m.Called(ctx, out) }

type oauthFixture struct {
	cfg      *configuration.YouTubeConfig
	provider *MockOAuthProvider
	yt       *MockYouTube
	tokens   *MockTokenRepo
	notifier *MockNotifier
	uc       *usecase.YouTubeOAuthUsecase
}

func newOAuthFixture(channels ...handshake.Channel) *oauthFixture {
	f := &oauthFixture{
		cfg: &configuration.YouTubeConfig{
			ClientID:     "1234567890-client.apps.googleusercontent.com",
			ClientSecret: "secret",
			RedirectURL:  "https://api.example.com/functions/youtube-oauth-callback",
			StateSecret:  stateSecret,
			DemoUserID:   testUserID,
		},
		provider: new(MockOAuthProvider),
		yt:       new(MockYouTube),
		tokens:   new(MockTokenRepo),
		notifier: new(MockNotifier),
	}
	f.uc = usecase.NewYouTubeOAuthUsecase(f.cfg, f.provider, f.yt, f.tokens, f.notifier, channels, nil)
	return f
}

func issueState(t *testing.T, userID string) (string, oauthstate.State) {
	raw, st, err := oauthstate.NewSigner(stateSecret).Issue(userID, "", false)
	require.NoError(t, err)
	return raw, st
}

func TestSetup_DemoModeUsesDemoUser(t *testing.T) {
	f := newOAuthFixture()
	f.provider.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://accounts.google.com/o/oauth2/auth?x=1")

	res, err := f.uc.Setup(context.Background(), "", dto.OAuthSetupRequest{DemoMode: true})

	require.NoError(t, err)
	assert.Equal(t, 2700, res.ExpiresIn)
	assert.NotEmpty(t, res.SessionID)
	st, err := oauthstate.NewSigner(stateSecret).Verify(res.State)
	require.NoError(t, err)
	assert.Equal(t, testUserID, st.UserID)
	assert.True(t, st.DemoMode)
	assert.Equal(t, res.SessionID, st.SessionID)
}

func TestSetup_InvalidConfiguration(t *testing.T) {
	f := newOAuthFixture()
	f.cfg.RedirectURL = "http://insecure.example/callback"

	_, err := f.uc.Setup(context.Background(), testUserID, dto.OAuthSetupRequest{})

	assert.ErrorIs(t, err, usecase.ErrConfiguration)
	f.provider.AssertNotCalled(t, "AuthCodeURL", mock.Anything)
}

func TestSetup_RequiresUser(t *testing.T) {
	f := newOAuthFixture()

	_, err := f.uc.Setup(context.Background(), "", dto.OAuthSetupRequest{})

	var ve *usecase.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCallback_Success(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	raw, st := issueState(t, testUserID)
	token := (&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}).WithExtra(map[string]interface{}{"scope": "youtube.upload"})

	f.provider.On("Exchange", ctx, "the-code").Return(token, nil)
	f.yt.On("GetMyChannel", ctx, token).Return(&model.YouTubeChannel{ID: "UC1", Title: "Cat Channel"}, nil)
	f.tokens.On("UpsertYouTubeToken", ctx, mock.MatchedBy(func(tok *model.YouTubeToken) bool {
		return tok.UserID == testUserID && tok.RefreshToken == "refresh" && *tok.ChannelName == "Cat Channel" && tok.Scope == "youtube.upload"
	})).Return(nil)
	f.tokens.On("UpsertSocialToken", ctx, mock.MatchedBy(func(tok *model.SocialToken) bool {
		return tok.Platform == model.PlatformYouTube && *tok.Username == "Cat Channel"
	})).Return(nil)
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(out model.OAuthOutcome) bool {
		return out.Success && out.SessionID == st.SessionID && out.ChannelName == "Cat Channel"
	})).Return()

	page := f.uc.Callback(ctx, dto.OAuthCallbackParams{Code: "the-code", State: raw})

	require.True(t, page.Success)
	assert.Equal(t, "Cat Channel", page.ChannelName)
	assert.Equal(t, st.SessionID, page.SessionID)
	f.tokens.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCallback_ChannelLookupFailureUsesDefaultName(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	raw, _ := issueState(t, testUserID)
	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}

	f.provider.On("Exchange", ctx, "c").Return(token, nil)
	f.yt.On("GetMyChannel", ctx, token).Return(nil, errors.New("quota"))
	f.tokens.On("UpsertYouTubeToken", ctx, mock.Anything).Return(nil)
	f.tokens.On("UpsertSocialToken", ctx, mock.Anything).Return(nil)
	f.notifier.On("Notify", ctx, mock.Anything).Return()

	page := f.uc.Callback(ctx, dto.OAuthCallbackParams{Code: "c", State: raw})

	require.True(t, page.Success)
	assert.Equal(t, "YouTube Channel", page.ChannelName)
}

func TestCallback_MissingRefreshTokenIsFatal(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	raw, st := issueState(t, testUserID)
	f.provider.On("Exchange", ctx, "c").Return(&oauth2.Token{AccessToken: "a"}, nil)
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(out model.OAuthOutcome) bool {
		return !out.Success && out.SessionID == st.SessionID
	})).Return()

	page := f.uc.Callback(ctx, dto.OAuthCallbackParams{Code: "c", State: raw})

	assert.False(t, page.Success)
	assert.Contains(t, page.Message, "No refresh token")
	f.tokens.AssertNotCalled(t, "UpsertYouTubeToken", mock.Anything, mock.Anything)
}

func TestCallback_ExpiredState(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	old := oauthstate.State{
		UserID:    testUserID,
		Timestamp: time.Now().Add(-2 * oauthstate.MaxAge).UnixMilli(),
		Nonce:     "n",
		SessionID: "sess-old",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, old).SignedString([]byte(stateSecret))
	require.NoError(t, err)
	f.notifier.On("Notify", ctx, mock.MatchedBy(func(out model.OAuthOutcome) bool {
		return out.SessionID == "sess-old" && !out.Success
	})).Return()

	page := f.uc.Callback(ctx, dto.OAuthCallbackParams{Code: "c", State: raw})

	assert.True(t, page.Expired)
	assert.False(t, page.Success)
	f.provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestCallback_InvalidStateAndProviderError(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()

	page := f.uc.Callback(ctx, dto.OAuthCallbackParams{Code: "c", State: "garbage"})
	assert.Equal(t, "Invalid state parameter", page.Message)

	page = f.uc.Callback(ctx, dto.OAuthCallbackParams{Error: "access_denied"})
	assert.Equal(t, "OAuth error: access_denied", page.Message)

	page = f.uc.Callback(ctx, dto.OAuthCallbackParams{State: "x"})
	assert.Contains(t, page.Message, "Missing authorization code")
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCallback_MissingConfigurationListsNames(t *testing.T) {
	f := newOAuthFixture()
	f.cfg.ClientSecret = ""
	f.cfg.StateSecret = ""

	page := f.uc.Callback(context.Background(), dto.OAuthCallbackParams{Code: "c", State: "s"})

	assert.False(t, page.Success)
	assert.Contains(t, page.Message, "GOOGLE_CLIENT_SECRET")
	assert.Contains(t, page.Message, "OAUTH_STATE_SECRET")
}

func TestStatus_ExpiredTokenIsDisconnected(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(&model.YouTubeToken{
		UserID:    testUserID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	st, err := f.uc.Status(ctx, testUserID)

	require.NoError(t, err)
	assert.False(t, st.Connected)
	require.NotNil(t, st.ExpiresAt)
}

func TestStatus_NoToken(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(nil, repository.ErrNotFound)

	st, err := f.uc.Status(ctx, testUserID)

	require.NoError(t, err)
	assert.False(t, st.Connected)
}

func TestDisconnect_Twice(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	f.tokens.On("DeleteYouTubeToken", ctx, testUserID).Return(int64(1), nil).Once()
	f.tokens.On("DeleteSocialToken", ctx, testUserID, model.PlatformYouTube).Return(int64(1), nil).Once()
	f.tokens.On("DeleteYouTubeToken", ctx, testUserID).Return(int64(0), nil).Once()
	f.tokens.On("DeleteSocialToken", ctx, testUserID, model.PlatformYouTube).Return(int64(0), nil).Once()

	require.NoError(t, f.uc.Disconnect(ctx, testUserID, "youtube"))
	require.NoError(t, f.uc.Disconnect(ctx, testUserID, "YouTube"))
	f.tokens.AssertExpectations(t)
}

func TestConnect_StubPlatform(t *testing.T) {
	f := newOAuthFixture()

	err := f.uc.Connect(context.Background(), testUserID, "tiktok")

	assert.ErrorIs(t, err, usecase.ErrNotSupported)
	assert.Equal(t, "TikTok integration requires API keys and is not currently supported", err.Error())
	assert.NoError(t, f.uc.Connect(context.Background(), testUserID, "youtube"))
}

func TestConnections_ListsEveryPlatform(t *testing.T) {
	f := newOAuthFixture()
	ctx := context.Background()
	name := "Cats"
	f.tokens.On("ListSocialTokens", ctx, testUserID).Return([]model.SocialToken{}, nil)
	f.tokens.On("GetYouTubeToken", ctx, testUserID).Return(&model.YouTubeToken{
		ExpiresAt:   time.Now().Add(time.Hour),
		ChannelName: &name,
	}, nil)

	list, err := f.uc.Connections(ctx, testUserID)

	require.NoError(t, err)
	require.Len(t, list, 7)
	assert.True(t, list[0].Connected)
	assert.True(t, list[0].Supported)
	assert.False(t, list[1].Supported)
}

type fakeWaitChannel struct{ out model.OAuthOutcome }

func (c fakeWaitChannel) Name() string { return "message" }

func (c fakeWaitChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	deliver(c.out)
	<-ctx.Done()
	return nil
}

func TestWait_ResolvesFromChannel(t *testing.T) {
	f := newOAuthFixture(fakeWaitChannel{out: model.OAuthOutcome{SessionID: "s1", Success: true, ChannelName: "Cats"}})

	res := f.uc.Wait(context.Background(), testUserID, "s1", time.Second)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "Cats", res.Message)
}

func TestWait_TimeoutIsPending(t *testing.T) {
	f := newOAuthFixture()

	res := f.uc.Wait(context.Background(), testUserID, "s1", 20*time.Millisecond)

	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "timeout", res.Kind)
}

func TestDiagnostics_HidesSecrets(t *testing.T) {
	f := newOAuthFixture()

	d := f.uc.Diagnostics()

	assert.Equal(t, true, d["success"])
	cfg := d["config"].(map[string]interface{})
	assert.Equal(t, "1234567890...", cfg["clientIdPrefix"])
	for _, v := range cfg {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret")
		}
	}
	_, err := url.Parse(cfg["redirectUri"].(string))
	assert.NoError(t, err)
}
