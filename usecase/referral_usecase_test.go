package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/usecase"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sequence(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func TestReferralCode_ReturnsExisting(t *testing.T) {
	profiles := new(MockProfileRepo)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, ReferralCode: ptr("ABCD1234")}, nil)

	res, err := usecase.NewReferralUsecase(profiles, nil).Code(ctx, testUserID)

	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", res.Code)
	assert.Equal(t, "Referral code already exists", res.Message)
	profiles.AssertNotCalled(t, "SetReferralCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestReferralCode_RetriesOnCollision(t *testing.T) {
	profiles := new(MockProfileRepo)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID}, nil)
	profiles.On("SetReferralCode", ctx, testUserID, "TAKEN001").Return("", repository.ErrConflict).Once()
	profiles.On("SetReferralCode", ctx, testUserID, "FRESH002").Return("FRESH002", nil).Once()

	uc := usecase.NewReferralUsecase(profiles, nil).WithCodeGenerator(sequence("TAKEN001", "FRESH002"))
	res, err := uc.Code(ctx, testUserID)

	require.NoError(t, err)
	assert.Equal(t, "FRESH002", res.Code)
	assert.Equal(t, "Referral code generated successfully", res.Message)
	profiles.AssertExpectations(t)
}

func TestReferralCode_GivesUpAfterRepeatedCollisions(t *testing.T) {
	profiles := new(MockProfileRepo)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID}, nil)
	profiles.On("SetReferralCode", ctx, testUserID, "TAKEN001").Return("", repository.ErrConflict)

	uc := usecase.NewReferralUsecase(profiles, nil).WithCodeGenerator(sequence("TAKEN001"))
	_, err := uc.Code(ctx, testUserID)

	assert.Error(t, err)
	profiles.AssertNumberOfCalls(t, "SetReferralCode", 5)
}

func TestReferralCode_DefaultGenerator(t *testing.T) {
	profiles := new(MockProfileRepo)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID}, nil)
	profiles.On("SetReferralCode", ctx, testUserID, mock.MatchedBy(func(code string) bool {
		return len(code) == 8
	})).Return("A1B2C3D4", nil)

	res, err := usecase.NewReferralUsecase(profiles, nil).Code(ctx, testUserID)

	require.NoError(t, err)
	assert.Equal(t, "A1B2C3D4", res.Code)
}

func TestCompleteReferral(t *testing.T) {
	const referredID = "0c6f5a2e-1b7d-4e8f-9a3b-5c4d6e7f8091"
	ctx := context.Background()
	m := metrics.New("test")

	t.Run("grants bonus", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		profiles.On("GetByReferralCode", ctx, "ABCD1234").Return(&model.Profile{ID: testUserID}, nil)
		profiles.On("RecordReferral", ctx, testUserID, referredID, 1).
			Return(&model.Profile{ID: testUserID, ReferralCount: 10, ReferralProgress: 0, Credits: 4}, nil)

		p, err := usecase.NewReferralUsecase(profiles, m).Complete(ctx, &dto.CompleteReferralRequest{
			ReferralCode: " abcd1234 ", ReferredUserID: referredID,
		})

		require.NoError(t, err)
		assert.Equal(t, 0, p.ReferralProgress)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ReferralBonuses))
	})

	t.Run("unknown code", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		profiles.On("GetByReferralCode", ctx, "NOPE0000").Return(nil, repository.ErrNotFound)

		_, err := usecase.NewReferralUsecase(profiles, m).Complete(ctx, &dto.CompleteReferralRequest{
			ReferralCode: "NOPE0000", ReferredUserID: referredID,
		})

		assert.ErrorIs(t, err, usecase.ErrNotFound)
	})

	t.Run("self referral", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		profiles.On("GetByReferralCode", ctx, "ABCD1234").Return(&model.Profile{ID: referredID}, nil)

		_, err := usecase.NewReferralUsecase(profiles, m).Complete(ctx, &dto.CompleteReferralRequest{
			ReferralCode: "ABCD1234", ReferredUserID: referredID,
		})

		var ve *usecase.ValidationError
		assert.ErrorAs(t, err, &ve)
		profiles.AssertNotCalled(t, "RecordReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already linked", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		profiles.On("GetByReferralCode", ctx, "ABCD1234").Return(&model.Profile{ID: testUserID}, nil)
		profiles.On("RecordReferral", ctx, testUserID, referredID, 1).
			Return(nil, fmt.Errorf("%w: referred user already linked or unknown", repository.ErrConflict))

		_, err := usecase.NewReferralUsecase(profiles, m).Complete(ctx, &dto.CompleteReferralRequest{
			ReferralCode: "ABCD1234", ReferredUserID: referredID,
		})

		var ve *usecase.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("validation", func(t *testing.T) {
		uc := usecase.NewReferralUsecase(new(MockProfileRepo), m)
		_, err := uc.Complete(ctx, &dto.CompleteReferralRequest{ReferredUserID: referredID})
		assert.Error(t, err)
		_, err = uc.Complete(ctx, &dto.CompleteReferralRequest{ReferralCode: "X", ReferredUserID: "not-a-uuid"})
		var ve *usecase.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestProfileUsecase_Get(t *testing.T) {
	profiles := new(MockProfileRepo)
	ledger := new(MockCreditLedger)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(&model.Profile{ID: testUserID, Credits: 3, SubscriptionTier: model.TierFree}, nil)
	ledger.On("ListTransactions", ctx, testUserID, 20).Return(nil, nil)

	view, err := usecase.NewProfileUsecase(profiles, ledger).Get(ctx, testUserID)

	require.NoError(t, err)
	assert.Equal(t, 3, view.Credits)
	assert.Equal(t, model.ReferralMilestone, view.ReferralMilestone)
	assert.NotNil(t, view.Transactions)
}

func TestProfileUsecase_NotFound(t *testing.T) {
	profiles := new(MockProfileRepo)
	ctx := context.Background()
	profiles.On("GetByID", ctx, testUserID).Return(nil, repository.ErrNotFound)

	_, err := usecase.NewProfileUsecase(profiles, new(MockCreditLedger)).Get(ctx, testUserID)

	assert.ErrorIs(t, err, usecase.ErrNotFound)
}
