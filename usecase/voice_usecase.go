package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"

	"github.com/google/uuid"
)

// MaxVoiceFileSize is the upload limit for voice files.
const MaxVoiceFileSize = 10 << 20

// ErrStorageDisabled is returned when no voice file bucket is configured.
var ErrStorageDisabled = errors.New("Voice file storage is not configured")

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// VoiceFile describes one uploaded part of a multipart form.
type VoiceFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type IVoiceUsecase interface {
	Upload(ctx context.Context, userID string, f VoiceFile) (string, error)
}

type VoiceUsecase struct {
	store repository.IVoiceStore
}

// NewVoiceUsecase accepts a nil store, in which case uploads are refused.
func NewVoiceUsecase(store repository.IVoiceStore) *VoiceUsecase {
	return &VoiceUsecase{store: store}
}

// VoiceFileKey builds the object key of a voice file.
func VoiceFileKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("voice/%s/%s%s", userID, uuid.NewString(), ext)
}

func (u *VoiceUsecase) Upload(ctx context.Context, userID string, f VoiceFile) (string, error) {
	if u.store == nil {
		return "", ErrStorageDisabled
	}
	if f.Body == nil || f.Size <= 0 {
		return "", invalid("file", "Missing voice file")
	}
	if f.Size > MaxVoiceFileSize {
		return "", invalid("file", "Voice file exceeds the 10MB limit")
	}
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "audio/") {
		return "", invalid("file", "Voice file must be an audio file")
	}

	key := VoiceFileKey(userID, f.Filename)
	url, err := u.store.Put(ctx, key, mediaType, io.LimitReader(f.Body, MaxVoiceFileSize), f.Size)
	if err != nil {
		return "", fmt.Errorf("store voice file: %w", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"user_id": userID,
		"key":     key,
		"size":    f.Size,
	}).Info("Voice file stored")
	return url, nil
}
