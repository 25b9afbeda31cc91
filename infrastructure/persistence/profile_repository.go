package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
)

const profileColumns = `id, email, full_name, credits, subscription_tier, referral_code, referral_count, referral_progress, referred_by, created_at, updated_at`

type ProfileRepository struct{ db *sql.DB }

func NewProfileRepository(db *sql.DB) *ProfileRepository { return &ProfileRepository{db: db} }

func scanProfile(row rowScanner) (*model.Profile, error) {
	p := &model.Profile{}
	var email, fullName, code, referredBy sql.NullString
	if err := row.Scan(&p.ID, &email, &fullName, &p.Credits, &p.SubscriptionTier, &code, &p.ReferralCount, &p.ReferralProgress, &referredBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	p.Email = stringPtr(email)
	p.FullName = stringPtr(fullName)
	p.ReferralCode = stringPtr(code)
	p.ReferredBy = stringPtr(referredBy)
	return p, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id))
}

func (r *ProfileRepository) GetByReferralCode(ctx context.Context, code string) (*model.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE referral_code=$1`, code))
}

func (r *ProfileRepository) SetReferralCode(ctx context.Context, id, code string) (string, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE profiles SET referral_code = COALESCE(referral_code, $2), updated_at=$3 WHERE id=$1 RETURNING referral_code`,
		id, code, time.Now().UTC())
	var stored string
	if err := row.Scan(&stored); err != nil {
		return "", uniqueViolation(notFound(err))
	}
	return stored, nil
}

func (r *ProfileRepository) RecordReferral(ctx context.Context, referrerID, referredID string, bonus int) (p *model.Profile, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `UPDATE profiles SET referred_by=$2, updated_at=$3 WHERE id=$1 AND referred_by IS NULL AND id <> $2`,
		referredID, referrerID, now)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: referred user already linked or unknown", repository.ErrConflict)
	}

	q := `UPDATE profiles SET
			referral_count = referral_count + 1,
			referral_progress = (referral_progress + 1) % $2,
			credits = credits + $3,
			updated_at = $4
		  WHERE id=$1
		  RETURNING ` + profileColumns
	p, err = scanProfile(tx.QueryRowContext(ctx, q, referrerID, model.ReferralMilestone, bonus, now))
	if err != nil {
		return nil, err
	}
	if bonus > 0 {
		if _, err = tx.ExecContext(ctx, `INSERT INTO credit_transactions (user_id, amount, transaction_type, description, created_at) VALUES ($1,$2,$3,$4,$5)`,
			referrerID, bonus, model.TransactionReferralBonus, "Referral bonus", now); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

type CreditLedgerRepository struct{ db *sql.DB }

func NewCreditLedgerRepository(db *sql.DB) *CreditLedgerRepository {
	return &CreditLedgerRepository{db: db}
}

// DebitForIdea decrements the balance with a floor check in a single statement,
// so concurrent submissions cannot both spend the last credit.
func (r *CreditLedgerRepository) DebitForIdea(ctx context.Context, idea *model.VideoIdea, description string) (remaining int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()

	row := tx.QueryRowContext(ctx, `UPDATE profiles SET credits = credits - 1, updated_at=$2 WHERE id=$1 AND credits >= 1 RETURNING credits`, idea.UserID, now)
	if err = row.Scan(&remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repository.ErrInsufficientCredits
		}
		return 0, err
	}
	if err = insertVideoIdea(ctx, tx, idea); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO credit_transactions (user_id, amount, transaction_type, description, created_at) VALUES ($1,$2,$3,$4,$5)`,
		idea.UserID, -1, model.TransactionVideoGeneration, description, now); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *CreditLedgerRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]model.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, amount, transaction_type, description, stripe_session_id, created_at
		FROM credit_transactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.CreditTransaction{}
	for rows.Next() {
		var t model.CreditTransaction
		var stripe sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.TransactionType, &t.Description, &stripe, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.StripeSessionID = stringPtr(stripe)
		list = append(list, t)
	}
	return list, rows.Err()
}
