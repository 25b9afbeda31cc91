package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDemoSubmit(t *testing.T) {
	auto := new(MockAutomation)
	ctx := context.Background()
	auto.On("SubmitDemo", ctx, mock.MatchedBy(func(p *dto.DemoWebhookPayload) bool {
		return p.IsDemo && p.DemoMode && p.SubscriptionTier == "demo" &&
			len(p.Platforms) == 1 && p.Platforms[0] == model.PlatformYouTube &&
			p.VoiceFileURL == nil && p.RequestID != ""
	})).Return(json.RawMessage(`{"ok":true}`), nil)

	res, err := usecase.NewDemoUsecase(auto).Submit(ctx, &dto.DemoVideoRequest{
		Title: "Demo", Caption: "A caption", VideoURL: "https://cdn/demo.mp4",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.DemoMode)
	assert.Equal(t, "Demo video submitted successfully", res.Message)
	assert.JSONEq(t, `{"ok":true}`, string(res.WebhookResponse))
}

func TestDemoSubmit_Validation(t *testing.T) {
	auto := new(MockAutomation)

	_, err := usecase.NewDemoUsecase(auto).Submit(context.Background(), &dto.DemoVideoRequest{Title: "Demo"})

	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, strings.HasPrefix(ve.Message, "Missing required fields"))
	auto.AssertNotCalled(t, "SubmitDemo", mock.Anything, mock.Anything)
}

func TestDemoSubmit_NotConfigured(t *testing.T) {
	auto := new(MockAutomation)
	auto.On("SubmitDemo", mock.Anything, mock.Anything).Return(nil, repository.ErrWebhookNotConfigured)

	_, err := usecase.NewDemoUsecase(auto).Submit(context.Background(), &dto.DemoVideoRequest{
		Title: "Demo", Caption: "c", VideoURL: "https://cdn/demo.mp4",
	})

	assert.ErrorIs(t, err, usecase.ErrConfiguration)
}

func TestDemoSubmit_WebhookFailure(t *testing.T) {
	auto := new(MockAutomation)
	auto.On("SubmitDemo", mock.Anything, mock.Anything).Return(nil, errors.New("status 502"))

	_, err := usecase.NewDemoUsecase(auto).Submit(context.Background(), &dto.DemoVideoRequest{
		Title: "Demo", Caption: "c", VideoURL: "https://cdn/demo.mp4", VoiceFileURL: "https://cdn/v.mp3",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrConfiguration)
}
