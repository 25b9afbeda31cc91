package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/configuration"
	"clip-and-ship/infrastructure/handshake"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/infrastructure/oauthstate"

	"golang.org/x/oauth2"
)

const defaultChannelName = "YouTube Channel"

// CallbackPage describes the page rendered at the end of a consent flow.
type CallbackPage struct {
	Success     bool
	Expired     bool
	ChannelName string
	SessionID   string
	Message     string
	Timestamp   int64
}

// NotSupportedError is returned for platforms without an OAuth integration.
type NotSupportedError struct {
	Platform string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s integration requires API keys and is not currently supported", e.Platform)
}

func (e *NotSupportedError) Unwrap() error { return ErrNotSupported }

// OutcomeNotifier delivers a consent outcome to waiting clients.
type OutcomeNotifier interface {
	Notify(ctx context.Context, out model.OAuthOutcome)
}

// IYouTubeOAuthUsecase runs the server side of the YouTube consent flow and
// manages social connections.
type IYouTubeOAuthUsecase interface {
	Setup(ctx context.Context, userID string, req dto.OAuthSetupRequest) (*dto.OAuthSetupResponse, error)
	Callback(ctx context.Context, params dto.OAuthCallbackParams) *CallbackPage
	Status(ctx context.Context, userID string) (*dto.OAuthStatusResponse, error)
	Wait(ctx context.Context, userID, sessionID string, timeout time.Duration) *dto.OAuthWaitResponse
	Connections(ctx context.Context, userID string) ([]model.ConnectionStatus, error)
	Connect(ctx context.Context, userID, platform string) error
	Disconnect(ctx context.Context, userID, platform string) error
	Diagnostics() map[string]interface{}
}

type YouTubeOAuthUsecase struct {
	cfg          *configuration.YouTubeConfig
	provider     repository.IOAuthProvider
	youtube      repository.IYouTube
	tokens       repository.IOAuthToken
	notifier     OutcomeNotifier
	waitChannels []handshake.Channel
	pollInterval time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewYouTubeOAuthUsecase wires the consent flow. waitChannels are raced by Wait
// next to a status poll of the waiting user.
func NewYouTubeOAuthUsecase(cfg *configuration.YouTubeConfig, provider repository.IOAuthProvider, yt repository.IYouTube,
	tokens repository.IOAuthToken, notifier OutcomeNotifier, waitChannels []handshake.Channel, m *metrics.Metrics) *YouTubeOAuthUsecase {
	return &YouTubeOAuthUsecase{
		cfg:          cfg,
		provider:     provider,
		youtube:      yt,
		tokens:       tokens,
		notifier:     notifier,
		waitChannels: waitChannels,
		pollInterval: 2 * time.Second,
		metrics:      m,
		now:          time.Now,
	}
}

func (u *YouTubeOAuthUsecase) signer() *oauthstate.Signer {
	return oauthstate.NewSigner(u.cfg.StateSecret)
}

func (u *YouTubeOAuthUsecase) Setup(ctx context.Context, userID string, req dto.OAuthSetupRequest) (*dto.OAuthSetupResponse, error) {
	if err := u.cfg.Validate(); err != nil {
		return nil, configError("%v", err)
	}
	if req.DemoMode {
		userID = u.cfg.DemoUserID
		if userID == "" {
			return nil, configError("DEMO_USER_ID is not configured")
		}
	}
	if userID == "" {
		return nil, invalid("user_id", "authenticated user required")
	}

	state, st, err := u.signer().Issue(userID, "", req.DemoMode)
	if err != nil {
		return nil, configError("%v", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"user_id":    userID,
		"session_id": st.SessionID,
		"demo_mode":  req.DemoMode,
	}).Info("OAuth consent flow started")

	return &dto.OAuthSetupResponse{
		AuthURL:   u.provider.AuthCodeURL(state),
		State:     state,
		SessionID: st.SessionID,
		ExpiresIn: int(oauthstate.MaxAge.Seconds()),
	}, nil
}

func (u *YouTubeOAuthUsecase) Callback(ctx context.Context, params dto.OAuthCallbackParams) *CallbackPage {
	page := u.callback(ctx, params)
	if page.Timestamp == 0 {
		page.Timestamp = u.now().UnixMilli()
	}
	if u.metrics != nil {
		result := "success"
		switch {
		case page.Expired:
			result = "expired"
		case !page.Success:
			result = "error"
		}
		u.metrics.OAuthCallbacks.WithLabelValues(result).Inc()
	}
	return page
}

func (u *YouTubeOAuthUsecase) callback(ctx context.Context, params dto.OAuthCallbackParams) *CallbackPage {
	log := logger.GetLogger().WithField("flow", "youtube_oauth_callback")

	if missing := u.cfg.Missing(); len(missing) > 0 {
		log.WithField("missing", missing).Error("OAuth callback without required configuration")
		return &CallbackPage{SessionID: params.SessionID, Message: "Missing required configuration: " + strings.Join(missing, ", ")}
	}

	signer := u.signer()
	st, stateErr := oauthstate.State{}, error(nil)
	if params.State != "" {
		st, stateErr = signer.Verify(params.State)
	}
	sessionID := params.SessionID
	if st.SessionID != "" {
		sessionID = st.SessionID
	}
	fail := func(msg string) *CallbackPage {
		page := &CallbackPage{SessionID: sessionID, Message: msg}
		if st.SessionID != "" {
			u.notifier.Notify(ctx, model.OAuthOutcome{SessionID: st.SessionID, UserID: st.UserID, Error: msg})
		}
		return page
	}

	if params.Error != "" {
		msg := "OAuth error: " + params.Error
		if params.ErrorDescription != "" {
			msg += " - " + params.ErrorDescription
		}
		log.WithField("provider_error", params.Error).Warn("Provider returned an error")
		return fail(msg)
	}
	if params.Code == "" || params.State == "" {
		return fail("Missing authorization code or state parameter")
	}
	if stateErr != nil {
		if errors.Is(stateErr, oauthstate.ErrStateExpired) {
			log.WithField("session_id", sessionID).Warn("OAuth state expired")
			page := fail("Your authentication session has expired. Please try connecting again.")
			page.Expired = true
			return page
		}
		log.WithField("error", stateErr).Warn("OAuth state rejected")
		return fail("Invalid state parameter")
	}
	log = log.WithFields(map[string]interface{}{"user_id": st.UserID, "session_id": st.SessionID})

	token, err := u.provider.Exchange(ctx, params.Code)
	if err != nil {
		log.WithField("error", err).Error("Token exchange failed")
		return fail(fmt.Sprintf("Failed to exchange authorization code: %v", err))
	}
	if token.RefreshToken == "" {
		log.Error("Token exchange returned no refresh token")
		return fail("No refresh token received. Please remove the app from your Google account permissions and try again.")
	}

	channelName := defaultChannelName
	var channelID *string
	if ch, err := u.youtube.GetMyChannel(ctx, token); err != nil {
		log.WithField("error", err).Warn("Channel lookup failed, using default name")
	} else if ch != nil {
		if ch.Title != "" {
			channelName = ch.Title
		}
		if ch.ID != "" {
			channelID = &ch.ID
		}
	}

	if err := u.persistToken(ctx, st.UserID, token, channelID, channelName); err != nil {
		log.WithField("error", err).Error("Persist YouTube token failed")
		return fail("Failed to save YouTube connection")
	}
	log.WithField("channel_name", channelName).Info("YouTube connected")

	now := u.now()
	u.notifier.Notify(ctx, model.OAuthOutcome{
		SessionID:   st.SessionID,
		UserID:      st.UserID,
		Success:     true,
		ChannelName: channelName,
		Timestamp:   now.UnixMilli(),
	})
	return &CallbackPage{Success: true, ChannelName: channelName, SessionID: st.SessionID, Timestamp: now.UnixMilli()}
}

func (u *YouTubeOAuthUsecase) persistToken(ctx context.Context, userID string, token *oauth2.Token, channelID *string, channelName string) error {
	now := u.now().UTC()
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(time.Hour)
	}
	scope, _ := token.Extra("scope").(string)
	name := channelName
	if err := u.tokens.UpsertYouTubeToken(ctx, &model.YouTubeToken{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		ChannelID:    channelID,
		ChannelName:  &name,
		Scope:        scope,
		TokenType:    token.TokenType,
	}); err != nil {
		return fmt.Errorf("upsert youtube token: %w", err)
	}
	refresh := token.RefreshToken
	if err := u.tokens.UpsertSocialToken(ctx, &model.SocialToken{
		UserID:       userID,
		Platform:     model.PlatformYouTube,
		AccessToken:  token.AccessToken,
		RefreshToken: &refresh,
		ExpiresAt:    &expiresAt,
		Username:     &name,
	}); err != nil {
		return fmt.Errorf("upsert social token: %w", err)
	}
	return nil
}

func (u *YouTubeOAuthUsecase) Status(ctx context.Context, userID string) (*dto.OAuthStatusResponse, error) {
	tok, err := u.tokens.GetYouTubeToken(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &dto.OAuthStatusResponse{Connected: false}, nil
		}
		return nil, fmt.Errorf("load youtube token: %w", err)
	}
	expiresAt, updatedAt := tok.ExpiresAt, tok.UpdatedAt
	return &dto.OAuthStatusResponse{
		Connected:   tok.IsValid(u.now()),
		ChannelName: tok.ChannelName,
		ExpiresAt:   &expiresAt,
		UpdatedAt:   &updatedAt,
	}, nil
}

// Wait long-polls the outcome of a consent flow started by the same user.
func (u *YouTubeOAuthUsecase) Wait(ctx context.Context, userID, sessionID string, timeout time.Duration) *dto.OAuthWaitResponse {
	channels := make([]handshake.Channel, 0, len(u.waitChannels)+1)
	channels = append(channels, u.waitChannels...)
	channels = append(channels, handshake.NewPollChannel(func(ctx context.Context) (handshake.ConnectionStatus, error) {
		st, err := u.Status(ctx, userID)
		if err != nil {
			return handshake.ConnectionStatus{}, err
		}
		out := handshake.ConnectionStatus{Connected: st.Connected}
		if st.ChannelName != nil {
			out.ChannelName = *st.ChannelName
		}
		if st.UpdatedAt != nil {
			out.UpdatedAt = *st.UpdatedAt
		}
		return out, nil
	}, u.pollInterval))

	res, err := handshake.NewCoordinator(channels, handshake.WithTimeout(timeout)).Wait(ctx, sessionID)
	if err == nil {
		u.countHandshake("success")
		return &dto.OAuthWaitResponse{Status: "success", Message: res.Outcome.ChannelName}
	}
	var herr *handshake.Error
	if errors.As(err, &herr) {
		u.countHandshake(string(herr.Kind))
		if herr.Kind == handshake.KindTimeout {
			return &dto.OAuthWaitResponse{Status: "pending", Kind: string(herr.Kind)}
		}
		return &dto.OAuthWaitResponse{Status: "error", Kind: string(herr.Kind), Message: herr.Message}
	}
	u.countHandshake("error")
	return &dto.OAuthWaitResponse{Status: "error", Message: err.Error()}
}

func (u *YouTubeOAuthUsecase) countHandshake(kind string) {
	if u.metrics != nil {
		u.metrics.Handshakes.WithLabelValues(kind).Inc()
	}
}

func (u *YouTubeOAuthUsecase) Connections(ctx context.Context, userID string) ([]model.ConnectionStatus, error) {
	social, err := u.tokens.ListSocialTokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list social tokens: %w", err)
	}
	byPlatform := make(map[string]model.SocialToken, len(social))
	for _, t := range social {
		byPlatform[t.Platform] = t
	}
	yt, err := u.tokens.GetYouTubeToken(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load youtube token: %w", err)
	}

	now := u.now()
	out := make([]model.ConnectionStatus, 0, len(model.Platforms()))
	for _, p := range model.Platforms() {
		cs := model.ConnectionStatus{Platform: p.Name, Supported: p.Supported}
		if p.Name == model.PlatformYouTube && yt != nil {
			expiresAt, updatedAt := yt.ExpiresAt, yt.UpdatedAt
			cs.Connected = yt.IsValid(now)
			cs.AccountName = yt.ChannelName
			cs.ExpiresAt = &expiresAt
			cs.UpdatedAt = &updatedAt
		} else if t, ok := byPlatform[p.Name]; ok {
			updatedAt := t.UpdatedAt
			cs.Connected = t.IsValid(now)
			cs.AccountName = t.Username
			cs.ExpiresAt = t.ExpiresAt
			cs.UpdatedAt = &updatedAt
		}
		out = append(out, cs)
	}
	return out, nil
}

// Connect validates that a platform can be connected. YouTube connects through
// Setup; every other platform is a stub.
func (u *YouTubeOAuthUsecase) Connect(ctx context.Context, userID, platform string) error {
	p, ok := model.LookupPlatform(platform)
	if !ok {
		return invalid("platform", "Unknown platform: %s", platform)
	}
	if !p.Supported {
		return &NotSupportedError{Platform: p.DisplayName}
	}
	return nil
}

// Disconnect removes the stored credentials of a platform. Removing a missing
// connection is not an error.
func (u *YouTubeOAuthUsecase) Disconnect(ctx context.Context, userID, platform string) error {
	p, ok := model.LookupPlatform(platform)
	if !ok {
		return invalid("platform", "Unknown platform: %s", platform)
	}
	var removed int64
	if p.Name == model.PlatformYouTube {
		n, err := u.tokens.DeleteYouTubeToken(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete youtube token: %w", err)
		}
		removed += n
	}
	n, err := u.tokens.DeleteSocialToken(ctx, userID, p.Name)
	if err != nil {
		return fmt.Errorf("delete social token: %w", err)
	}
	removed += n
	logger.GetLogger().WithFields(map[string]interface{}{
		"user_id":  userID,
		"platform": p.Name,
		"removed":  removed,
	}).Info("Platform disconnected")
	return nil
}

// Diagnostics reports which settings are present without revealing them.
func (u *YouTubeOAuthUsecase) Diagnostics() map[string]interface{} {
	validation := "ok"
	if err := u.cfg.Validate(); err != nil {
		validation = err.Error()
	}
	clientIDPrefix := ""
	if len(u.cfg.ClientID) >= 10 {
		clientIDPrefix = u.cfg.ClientID[:10] + "..."
	}
	return map[string]interface{}{
		"success": validation == "ok",
		"config": map[string]interface{}{
			"hasClientId":      u.cfg.ClientID != "",
			"hasClientSecret":  u.cfg.ClientSecret != "",
			"hasStateSecret":   u.cfg.StateSecret != "",
			"hasDemoUser":      u.cfg.DemoUserID != "",
			"clientIdPrefix":   clientIDPrefix,
			"redirectUri":      u.cfg.RedirectURL,
			"redirectUriHttps": strings.HasPrefix(u.cfg.RedirectURL, "https://"),
		},
		"missing":    u.cfg.Missing(),
		"validation": validation,
		"timestamp":  u.now().UTC().Format(time.RFC3339),
	}
}
