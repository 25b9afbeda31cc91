package repository

import (
	"context"

	"clip-and-ship/domain/model"
)

// IProfile reads and mutates user profiles.
type IProfile interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (*model.Profile, error)
	// SetReferralCode stores the code only when the profile has none yet and
	// returns the code that is stored afterwards.
	SetReferralCode(ctx context.Context, id, code string) (string, error)
	// RecordReferral bumps the referrer counters, links the referred user and
	// grants the bonus in one transaction.
	RecordReferral(ctx context.Context, referrerID, referredID string, bonus int) (*model.Profile, error)
}

// ICreditLedger couples balance changes with their ledger rows.
type ICreditLedger interface {
	// DebitForIdea atomically takes one credit, inserts the idea and appends the
	// ledger row. Returns ErrInsufficientCredits when the balance is empty.
	DebitForIdea(ctx context.Context, idea *model.VideoIdea, description string) (int, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.CreditTransaction, error)
}
