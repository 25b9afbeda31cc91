package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/infrastructure/utils"

	"github.com/google/uuid"
)

const (
	referralCodeLength   = 8
	referralCodeAttempts = 5
	referralBonusCredits = 1
)

// ReferralCode is the answer of the code endpoint.
type ReferralCode struct {
	Code    string `json:"referral_code"`
	Message string `json:"message"`
}

type IReferralUsecase interface {
	Code(ctx context.Context, userID string) (*ReferralCode, error)
	Complete(ctx context.Context, req *dto.CompleteReferralRequest) (*model.Profile, error)
}

type ReferralUsecase struct {
	profiles repository.IProfile
	metrics  *metrics.Metrics
	newCode  func() string
}

func NewReferralUsecase(profiles repository.IProfile, m *metrics.Metrics) *ReferralUsecase {
	return &ReferralUsecase{profiles: profiles, metrics: m, newCode: generateReferralCode}
}

// WithCodeGenerator replaces the random code source.
func (u *ReferralUsecase) WithCodeGenerator(gen func() string) *ReferralUsecase {
	u.newCode = gen
	return u
}

func generateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:referralCodeLength])
}

func (u *ReferralUsecase) Code(ctx context.Context, userID string) (*ReferralCode, error) {
	profile, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}
	if profile.ReferralCode != nil && *profile.ReferralCode != "" {
		return &ReferralCode{Code: *profile.ReferralCode, Message: "Referral code already exists"}, nil
	}

	for attempt := 1; attempt <= referralCodeAttempts; attempt++ {
		stored, err := u.profiles.SetReferralCode(ctx, userID, u.newCode())
		if errors.Is(err, repository.ErrConflict) {
			logger.GetLogger().WithField("attempt", attempt).Warn("Referral code collision, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save referral code: %w", err)
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"user_id":       userID,
			"referral_code": stored,
		}).Info("Generated referral code")
		return &ReferralCode{Code: stored, Message: "Referral code generated successfully"}, nil
	}
	return nil, errors.New("failed to generate referral code")
}

func (u *ReferralUsecase) Complete(ctx context.Context, req *dto.CompleteReferralRequest) (*model.Profile, error) {
	if req == nil || strings.TrimSpace(req.ReferralCode) == "" {
		return nil, invalid("referral_code", "Missing referral_code")
	}
	if !utils.IsUUID(req.ReferredUserID) {
		return nil, invalid("referred_user_id", "Invalid referred_user_id")
	}
	code := strings.ToUpper(strings.TrimSpace(req.ReferralCode))

	referrer, err := u.profiles.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("referral code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("lookup referral code: %w", err)
	}
	if referrer.ID == req.ReferredUserID {
		return nil, invalid("referred_user_id", "Users cannot refer themselves")
	}

	updated, err := u.profiles.RecordReferral(ctx, referrer.ID, req.ReferredUserID, referralBonusCredits)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("referred_user_id", "Referral already recorded for this user")
		}
		return nil, fmt.Errorf("record referral: %w", err)
	}
	if u.metrics != nil {
		u.metrics.ReferralBonuses.Add(referralBonusCredits)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"referrer_id":       referrer.ID,
		"referred_id":       req.ReferredUserID,
		"referral_count":    updated.ReferralCount,
		"referral_progress": updated.ReferralProgress,
	}).Info("Referral completed")
	return updated, nil
}
