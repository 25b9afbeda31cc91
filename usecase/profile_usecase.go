package usecase

import (
	"context"
	"fmt"

	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
)

const recentTransactions = 20

// ProfileView is the caller's profile with the latest ledger rows.
type ProfileView struct {
	*model.Profile
	ReferralMilestone int                       `json:"referral_milestone"`
	Transactions      []model.CreditTransaction `json:"transactions"`
}

type IProfileUsecase interface {
	Get(ctx context.Context, userID string) (*ProfileView, error)
}

type ProfileUsecase struct {
	profiles repository.IProfile
	ledger   repository.ICreditLedger
}

func NewProfileUsecase(profiles repository.IProfile, ledger repository.ICreditLedger) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles, ledger: ledger}
}

func (u *ProfileUsecase) Get(ctx context.Context, userID string) (*ProfileView, error) {
	p, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	txs, err := u.ledger.ListTransactions(ctx, userID, recentTransactions)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []model.CreditTransaction{}
	}
	return &ProfileView{Profile: p, ReferralMilestone: model.ReferralMilestone, Transactions: txs}, nil
}
