package persistence

import (
	"context"
	"database/sql"
	"time"

	"clip-and-ship/domain/model"
)

type OAuthTokenRepository struct{ db *sql.DB }

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository { return &OAuthTokenRepository{db: db} }

func (r *OAuthTokenRepository) UpsertYouTubeToken(ctx context.Context, t *model.YouTubeToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.TokenType == "" {
		t.TokenType = "Bearer"
	}
	q := `INSERT INTO youtube_tokens (user_id, access_token, refresh_token, expires_at, channel_id, channel_name, scope, token_type, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (user_id) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=COALESCE(NULLIF(EXCLUDED.refresh_token, ''), youtube_tokens.refresh_token),
			expires_at=EXCLUDED.expires_at,
			channel_id=COALESCE(EXCLUDED.channel_id, youtube_tokens.channel_id),
			channel_name=COALESCE(EXCLUDED.channel_name, youtube_tokens.channel_name),
			scope=EXCLUDED.scope,
			token_type=EXCLUDED.token_type,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt, nullString(t.ChannelID), nullString(t.ChannelName),
		t.Scope, t.TokenType, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *OAuthTokenRepository) GetYouTubeToken(ctx context.Context, userID string) (*model.YouTubeToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, access_token, refresh_token, expires_at, channel_id, channel_name, scope, token_type, created_at, updated_at
		FROM youtube_tokens WHERE user_id=$1`, userID)
	tok := &model.YouTubeToken{}
	var channelID, channelName sql.NullString
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt, &channelID, &channelName,
		&tok.Scope, &tok.TokenType, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	tok.ChannelID = stringPtr(channelID)
	tok.ChannelName = stringPtr(channelName)
	return tok, nil
}

func (r *OAuthTokenRepository) DeleteYouTubeToken(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM youtube_tokens WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *OAuthTokenRepository) UpsertSocialToken(ctx context.Context, t *model.SocialToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	var exp sql.NullTime
	if t.ExpiresAt != nil {
		exp = sql.NullTime{Time: *t.ExpiresAt, Valid: true}
	}
	q := `INSERT INTO social_tokens (user_id, platform, access_token, refresh_token, expires_at, username, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=COALESCE(EXCLUDED.refresh_token, social_tokens.refresh_token),
			expires_at=EXCLUDED.expires_at,
			username=COALESCE(EXCLUDED.username, social_tokens.username),
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, t.UserID, t.Platform, t.AccessToken, nullString(t.RefreshToken), exp, nullString(t.Username), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *OAuthTokenRepository) ListSocialTokens(ctx context.Context, userID string) ([]model.SocialToken, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, username, created_at, updated_at
		FROM social_tokens WHERE user_id=$1 ORDER BY platform`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.SocialToken{}
	for rows.Next() {
		var t model.SocialToken
		var refresh, username sql.NullString
		var exp sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.Platform, &t.AccessToken, &refresh, &exp, &username, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.RefreshToken = stringPtr(refresh)
		t.ExpiresAt = timePtr(exp)
		t.Username = stringPtr(username)
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *OAuthTokenRepository) DeleteSocialToken(ctx context.Context, userID, platform string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM social_tokens WHERE user_id=$1 AND platform=$2`, userID, platform)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
