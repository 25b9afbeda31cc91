package usecase_test

import (
	"context"
	"errors"
	"fmt"
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

type MockUploader struct{ mock.Mock }

func (m *MockUploader) Upload(ctx context.Context, req *dto.YouTubeUploadRequest) (*dto.YouTubeUploadResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.YouTubeUploadResponse), args.Error(1)
}

type ideaFixture struct {
	ideas      *MockVideoIdeaRepo
	ledger     *MockCreditLedger
	profiles   *MockProfileRepo
	tokens     *MockTokenRepo
	provider   *MockOAuthProvider
	automation *MockAutomation
	uploader   *MockUploader
	hub        *MockBroadcaster
	uc         *usecase.VideoIdeaUsecase
}

func newIdeaFixture() *ideaFixture {
	f := &ideaFixture{
		ideas:      new(MockVideoIdeaRepo),
		ledger:     new(MockCreditLedger),
		profiles:   new(MockProfileRepo),
		tokens:     new(MockTokenRepo),
		provider:   new(MockOAuthProvider),
		automation: new(MockAutomation),
		uploader:   new(MockUploader),
		hub:        new(MockBroadcaster),
	}
	f.hub.On("BroadcastVideoIdea", mock.Anything).Return().Maybe()
	f.uc = usecase.NewVideoIdeaUsecase(usecase.VideoIdeaDeps{
		Ideas:           f.ideas,
		Ledger:          f.ledger,
		Profiles:        f.profiles,
		Tokens:          f.tokens,
		Provider:        f.provider,
		Automation:      f.automation,
		Uploader:        f.uploader,
		Hub:             f.hub,
		CallbackBaseURL: "https://api.example.com/",
	})
	return f
}

func TestSanitizeIdea(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script a cat video", usecase.SanitizeIdea("  <script>alert(1)</script> a cat video "))
	assert.Equal(t, "click alert(1)", usecase.SanitizeIdea("click javascript:alert(1)"))
	assert.Equal(t, "img x", usecase.SanitizeIdea("img onerror=x"))
	assert.Len(t, usecase.SanitizeIdea(strings.Repeat("a", 6000)), 5000)
}

func TestContainsBlockedContent(t *testing.T) {
	assert.True(t, usecase.ContainsBlockedContent("A video about a SCAM"))
	assert.False(t, usecase.ContainsBlockedContent("A video about scampi recipes"))
}

func TestSubmit_DebitsAndTriggersGeneration(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	text := "A cat explaining quantum physics in sixty seconds flat"

	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, Credits: 5, SubscriptionTier: model.TierPremium}, nil)
	f.ledger.On("DebitForIdea", ctx, mock.MatchedBy(func(v *model.VideoIdea) bool {
		return v.IdeaText == text && v.UseAIVoice && assert.ObjectsAreEqual([]string{"youtube", "tiktok"}, v.SelectedPlatforms)
	}), fmt.Sprintf("Video generation for idea: %s...", text[:50])).
		Run(func(args mock.Arguments) { args.Get(1).(*model.VideoIdea).ID = "idea-1" }).
		Return(4, nil)
	f.automation.On("GenerationConfigured").Return(true)
	f.automation.On("TriggerGeneration", ctx, mock.MatchedBy(func(r *dto.GenerationRequest) bool {
		return r.VideoIdeaID == "idea-1" && r.CallbackURL == "https://api.example.com/functions/handle-video-webhook" && r.SubscriptionTier == model.TierPremium
	})).Return(nil)
	f.ideas.On("UpdateStatus", ctx, "idea-1", model.StatusProcessing, map[string]string(nil)).Return(nil)

	res, err := f.uc.Submit(ctx, testUserID, &dto.SubmitVideoRequest{
		IdeaText:          text,
		SelectedPlatforms: []string{"YouTube", "tiktok", "myspace", "youtube"},
		UseAIVoice:        true,
	})

	require.NoError(t, err)
	assert.Equal(t, &dto.SubmitVideoResponse{Success: true, VideoIdeaID: "idea-1", RemainingCredits: 4}, res)
	f.ledger.AssertExpectations(t)
	f.automation.AssertExpectations(t)
	f.ideas.AssertExpectations(t)
}

func TestSubmit_WebhookRejectedMarksFailed(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, SubscriptionTier: model.TierFree}, nil)
	f.ledger.On("DebitForIdea", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.VideoIdea).ID = "idea-2" }).
		Return(0, nil)
	f.automation.On("GenerationConfigured").Return(true)
	f.automation.On("TriggerGeneration", ctx, mock.Anything).Return(fmt.Errorf("%w: status 500", repository.ErrWebhookRejected))
	f.ideas.On("UpdateStatus", ctx, "idea-2", model.StatusFailed, map[string]string{"webhook_error": "Failed to trigger video generation"}).
		Return(errors.New("db down"))

	res, err := f.uc.Submit(ctx, testUserID, &dto.SubmitVideoRequest{IdeaText: "A long enough idea text", SelectedPlatforms: []string{"youtube"}})

	require.NoError(t, err)
	assert.True(t, res.Success)
	f.ideas.AssertExpectations(t)
}

func TestSubmit_InsufficientCredits(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, SubscriptionTier: model.TierFree}, nil)
	f.ledger.On("DebitForIdea", ctx, mock.Anything, mock.Anything).Return(0, repository.ErrInsufficientCredits)

	_, err := f.uc.Submit(ctx, testUserID, &dto.SubmitVideoRequest{IdeaText: "A long enough idea text", SelectedPlatforms: []string{"youtube"}})

	assert.ErrorIs(t, err, usecase.ErrInsufficientCredits)
	f.automation.AssertNotCalled(t, "TriggerGeneration", mock.Anything, mock.Anything)
}

func TestSubmit_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.SubmitVideoRequest
		msg  string
	}{
		{"empty", dto.SubmitVideoRequest{SelectedPlatforms: []string{"youtube"}}, "Invalid idea_text"},
		{"no platforms", dto.SubmitVideoRequest{IdeaText: "long enough idea"}, "Invalid selected_platforms"},
		{"unknown platforms", dto.SubmitVideoRequest{IdeaText: "long enough idea", SelectedPlatforms: []string{"facebook"}}, "No valid platforms selected"},
		{"too short", dto.SubmitVideoRequest{IdeaText: "<b>hi</b>", SelectedPlatforms: []string{"youtube"}}, "Idea must be at least 10 characters"},
		{"blocked", dto.SubmitVideoRequest{IdeaText: "how to run a phishing campaign", SelectedPlatforms: []string{"youtube"}}, "Content contains inappropriate material"},
		{"voice url", dto.SubmitVideoRequest{IdeaText: "long enough idea", SelectedPlatforms: []string{"youtube"}, VoiceFileURL: "ftp://x/y.mp3"}, "Invalid voice file URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newIdeaFixture()
			_, err := f.uc.Submit(context.Background(), testUserID, &tc.req)
			var ve *usecase.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.msg, ve.Message)
			f.ledger.AssertNotCalled(t, "DebitForIdea", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_FreeTierCannotTargetTikTok(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, Credits: 3, SubscriptionTier: model.TierFree}, nil)

	_, err := f.uc.Submit(ctx, testUserID, &dto.SubmitVideoRequest{IdeaText: "A long enough idea text", SelectedPlatforms: []string{"youtube", "tiktok"}})

	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "tiktok")
	f.ledger.AssertNotCalled(t, "DebitForIdea", mock.Anything, mock.Anything, mock.Anything)
}

func readyIdea(id string) *model.VideoIdea {
	ready := model.ApprovalReadyForApproval
	return &model.VideoIdea{
		ID:                id,
		UserID:            testUserID,
		IdeaText:          "A cat video",
		SelectedPlatforms: []string{"youtube", "tiktok"},
		ApprovalStatus:    &ready,
		VideoURL:          ptr("https://cdn/v.mp4"),
		YouTubeTitle:      ptr("Cats!"),
		Caption:           ptr("caption"),
	}
}

func TestDecide_RejectDeletes(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(readyIdea("idea-1"), nil)
	f.ideas.On("Delete", ctx, "idea-1", testUserID).Return(true, nil)

	v, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: false, RejectionReason: "meh"})

	require.NoError(t, err)
	assert.Nil(t, v)
	f.ideas.AssertExpectations(t)
	f.hub.AssertCalled(t, "BroadcastVideoIdea", mock.MatchedBy(func(e model.VideoIdeaEvent) bool { return e.Type == model.EventDelete }))
}

func TestDecide_NotReady(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	idea := readyIdea("idea-1")
	idea.ApprovalStatus = nil
	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(idea, nil)

	_, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: true})

	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
	f.ideas.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_ApproveUsesPublishWebhook(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	approved := readyIdea("idea-1")
	approved.ApprovalStatus = ptr(model.ApprovalApproved)
	past := time.Now().Add(-time.Hour)

	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(readyIdea("idea-1"), nil)
	f.ideas.On("Approve", ctx, "idea-1", testUserID, []string{"youtube", "tiktok"}, mock.AnythingOfType("time.Time")).Return(approved, nil)
	f.automation.On("PublishConfigured").Return(true)
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{SubscriptionTier: model.TierPro}, nil)
	f.tokens.On("ListSocialTokens", ctx, testUserID).Return([]model.SocialToken{
		{Platform: "youtube", AccessToken: "yt", RefreshToken: ptr("r")},
		{Platform: "tiktok", AccessToken: "tt", ExpiresAt: &past},
		{Platform: "x", AccessToken: "xx"},
	}, nil)
	f.ideas.On("UpdateStatus", ctx, "idea-1", approved.Status, map[string]string{
		"tiktok": "tiktok connection expired or missing; reconnect required",
	}).Return(nil)
	f.automation.On("TriggerPublish", ctx, mock.MatchedBy(func(r *dto.PublishRequest) bool {
		return len(r.SocialAccounts) == 1 && r.SocialAccounts[0].Platform == "youtube" &&
			r.Titles["youtube"] == "Cats!" && r.SubscriptionTier == model.TierPro &&
			r.CallbackURL == "https://api.example.com/functions/video-upload-complete"
	})).Return(nil)

	v, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: true})

	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, *v.ApprovalStatus)
	f.automation.AssertExpectations(t)
	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDecide_ApproveRefreshesExpiredYouTubeToken(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	approved := readyIdea("idea-1")
	approved.SelectedPlatforms = []string{"youtube"}
	approved.ApprovalStatus = ptr(model.ApprovalApproved)
	expired := time.Now().Add(-time.Hour)
	fresh := &oauth2.Token{AccessToken: "yt-new", Expiry: time.Now().Add(time.Hour)}

	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(readyIdea("idea-1"), nil)
	f.ideas.On("Approve", ctx, "idea-1", testUserID, []string{"youtube"}, mock.Anything).Return(approved, nil)
	f.automation.On("PublishConfigured").Return(true)
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{SubscriptionTier: model.TierFree}, nil)
	f.tokens.On("ListSocialTokens", ctx, testUserID).Return([]model.SocialToken{
		{UserID: testUserID, Platform: "youtube", AccessToken: "yt-old", RefreshToken: ptr("r"), ExpiresAt: &expired},
	}, nil)
	f.provider.On("Refresh", ctx, mock.MatchedBy(func(tok *oauth2.Token) bool {
		return tok.AccessToken == "yt-old" && tok.RefreshToken == "r"
	})).Return(fresh, nil)
	f.tokens.On("UpsertSocialToken", ctx, mock.MatchedBy(func(tok *model.SocialToken) bool {
		return tok.Platform == "youtube" && tok.AccessToken == "yt-new" && tok.ExpiresAt.Equal(fresh.Expiry)
	})).Return(nil)
	f.automation.On("TriggerPublish", ctx, mock.MatchedBy(func(r *dto.PublishRequest) bool {
		return len(r.SocialAccounts) == 1 && r.SocialAccounts[0].AccessToken == "yt-new"
	})).Return(nil)

	_, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: true, SelectedPlatforms: []string{"youtube"}})

	require.NoError(t, err)
	f.provider.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
	f.automation.AssertExpectations(t)
	f.ideas.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_ApproveWithoutUsableTokenMarksReconnect(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	approved := readyIdea("idea-1")
	approved.SelectedPlatforms = []string{"youtube"}
	expired := time.Now().Add(-time.Hour)

	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(readyIdea("idea-1"), nil)
	f.ideas.On("Approve", ctx, "idea-1", testUserID, []string{"youtube"}, mock.Anything).Return(approved, nil)
	f.automation.On("PublishConfigured").Return(true)
	f.profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{SubscriptionTier: model.TierFree}, nil)
	f.tokens.On("ListSocialTokens", ctx, testUserID).Return([]model.SocialToken{
		{UserID: testUserID, Platform: "youtube", AccessToken: "yt-old", RefreshToken: ptr("r"), ExpiresAt: &expired},
	}, nil)
	f.provider.On("Refresh", ctx, mock.Anything).Return(nil, errors.New("invalid_grant"))
	f.ideas.On("UpdateStatus", ctx, "idea-1", model.StatusFailed, mock.MatchedBy(func(errs map[string]string) bool {
		return strings.Contains(errs["publish_error"], usecase.ErrReconnectRequired.Error())
	})).Return(nil)

	_, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: true, SelectedPlatforms: []string{"youtube"}})

	require.NoError(t, err)
	f.ideas.AssertExpectations(t)
	f.automation.AssertNotCalled(t, "TriggerPublish", mock.Anything, mock.Anything)
}

func TestDecide_ApproveFallsBackToDirectUpload(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	approved := readyIdea("idea-1")

	f.ideas.On("GetByIDForUser", ctx, "idea-1", testUserID).Return(readyIdea("idea-1"), nil)
	f.ideas.On("Approve", ctx, "idea-1", testUserID, []string{"youtube"}, mock.Anything).Return(approved, nil)
	f.automation.On("PublishConfigured").Return(false)
	f.uploader.On("Upload", ctx, &dto.YouTubeUploadRequest{
		VideoIdeaID: "idea-1",
		UserID:      testUserID,
		VideoURL:    "https://cdn/v.mp4",
		Title:       "Cats!",
		Description: "caption",
		IsShort:     true,
	}).Return(&dto.YouTubeUploadResponse{Success: true}, nil)

	_, err := f.uc.Decide(ctx, testUserID, "idea-1", &dto.ApprovalRequest{Approved: true, SelectedPlatforms: []string{"youtube"}})

	require.NoError(t, err)
	f.uploader.AssertExpectations(t)
}

func TestSweepRejected(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.ideas.On("DeleteRejected", ctx).Return(int64(3), nil)

	n, err := f.uc.SweepRejected(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdate_SanitizesAndScopes(t *testing.T) {
	f := newIdeaFixture()
	ctx := context.Background()
	f.ideas.On("UpdateIdea", ctx, "idea-1", testUserID, ptr("A better idea text"), []string(nil)).
		Return(&model.VideoIdea{ID: "idea-1"}, nil)

	_, err := f.uc.Update(ctx, testUserID, "idea-1", &dto.UpdateVideoIdeaRequest{IdeaText: ptr("A <better> idea text")})

	require.NoError(t, err)
	f.ideas.AssertExpectations(t)

	f.ideas.On("UpdateIdea", ctx, "missing", testUserID, mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	_, err = f.uc.Update(ctx, testUserID, "missing", &dto.UpdateVideoIdeaRequest{SelectedPlatforms: []string{"youtube"}})
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}
