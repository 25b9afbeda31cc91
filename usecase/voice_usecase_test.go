package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"clip-and-ship/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVoiceFileKey(t *testing.T) {
	key := usecase.VoiceFileKey(testUserID, "My Voice.MP3")
	assert.Regexp(t, regexp.MustCompile(`^voice/`+testUserID+`/[0-9a-f-]{36}\.mp3$`), key)

	key = usecase.VoiceFileKey(testUserID, "weird.ext/../../x")
	assert.False(t, strings.Contains(key, ".."))
}

func TestVoiceUpload(t *testing.T) {
	store := new(MockVoiceStore)
	ctx := context.Background()
	store.On("Put", ctx, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "voice/"+testUserID+"/") }),
		"audio/mpeg", mock.Anything, int64(5)).Return("https://bucket/voice/x.mp3", nil)

	url, err := usecase.NewVoiceUsecase(store).Upload(ctx, testUserID, usecase.VoiceFile{
		Filename: "take.mp3", ContentType: "audio/mpeg", Size: 5, Body: strings.NewReader("bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "https://bucket/voice/x.mp3", url)
}

func TestVoiceUpload_Rejects(t *testing.T) {
	store := new(MockVoiceStore)
	uc := usecase.NewVoiceUsecase(store)
	ctx := context.Background()

	cases := map[string]usecase.VoiceFile{
		"not audio": {Filename: "a.png", ContentType: "image/png", Size: 5, Body: strings.NewReader("x")},
		"too large": {Filename: "a.mp3", ContentType: "audio/mpeg", Size: usecase.MaxVoiceFileSize + 1, Body: strings.NewReader("x")},
		"empty":     {Filename: "a.mp3", ContentType: "audio/mpeg"},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Upload(ctx, testUserID, f)
			var ve *usecase.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVoiceUpload_Disabled(t *testing.T) {
	_, err := usecase.NewVoiceUsecase(nil).Upload(context.Background(), testUserID, usecase.VoiceFile{})
	assert.ErrorIs(t, err, usecase.ErrStorageDisabled)
}

func TestVoiceUpload_StoreError(t *testing.T) {
	store := new(MockVoiceStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("denied"))

	_, err := usecase.NewVoiceUsecase(store).Upload(context.Background(), testUserID, usecase.VoiceFile{
		Filename: "a.wav", ContentType: "audio/wav", Size: 1, Body: strings.NewReader("x"),
	})

	assert.ErrorContains(t, err, "denied")
}
