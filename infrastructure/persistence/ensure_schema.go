package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var schemaTables = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		email TEXT,
		full_name TEXT,
		credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
		subscription_tier TEXT NOT NULL DEFAULT 'free',
		referral_code TEXT UNIQUE,
		referral_count INTEGER NOT NULL DEFAULT 0,
		referral_progress INTEGER NOT NULL DEFAULT 0,
		referred_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS video_ideas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES profiles(id),
		idea_text TEXT NOT NULL,
		selected_platforms TEXT[] NOT NULL DEFAULT '{}',
		use_ai_voice BOOLEAN NOT NULL DEFAULT true,
		voice_file_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		approval_status TEXT,
		execution_id TEXT UNIQUE,
		video_url TEXT,
		preview_video_url TEXT,
		caption TEXT,
		youtube_title TEXT,
		tiktok_title TEXT,
		instagram_title TEXT,
		environment_prompt TEXT,
		sound_prompt TEXT,
		youtube_link TEXT,
		youtube_video_id TEXT,
		tiktok_link TEXT,
		tiktok_video_id TEXT,
		instagram_link TEXT,
		instagram_media_id TEXT,
		upload_status JSONB NOT NULL DEFAULT '{}',
		upload_progress JSONB NOT NULL DEFAULT '{}',
		upload_errors JSONB NOT NULL DEFAULT '{}',
		approved_at TIMESTAMPTZ,
		rejected_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS video_ideas_user_created_idx ON video_ideas (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS pending_videos (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		execution_id TEXT NOT NULL UNIQUE,
		user_id UUID NOT NULL,
		video_url TEXT NOT NULL,
		idea TEXT NOT NULL,
		caption TEXT,
		titles_descriptions JSONB,
		upload_targets JSONB NOT NULL DEFAULT '[]',
		upload_results JSONB,
		status TEXT NOT NULL DEFAULT 'pending_approval',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES profiles(id),
		amount INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		stripe_session_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS youtube_tokens (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		channel_id TEXT,
		channel_name TEXT,
		scope TEXT NOT NULL DEFAULT '',
		token_type TEXT NOT NULL DEFAULT 'Bearer',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS social_tokens (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL,
		platform TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		expires_at TIMESTAMPTZ,
		username TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, platform)
	)`,
	`CREATE TABLE IF NOT EXISTS youtube_uploads (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		video_idea_id UUID,
		youtube_video_id TEXT NOT NULL,
		youtube_url TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		privacy_status TEXT NOT NULL,
		upload_status TEXT NOT NULL,
		processing_status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID,
		video_idea_id UUID,
		event TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error TEXT,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS health_check_logs (
		id BIGSERIAL PRIMARY KEY,
		component TEXT NOT NULL,
		status TEXT NOT NULL,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		details TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates missing tables and adds columns introduced after the
// first deployment. Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, ddl := range schemaTables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"video_ideas", "execution_id", "ALTER TABLE video_ideas ADD COLUMN execution_id TEXT UNIQUE"},
		{"profiles", "referred_by", "ALTER TABLE profiles ADD COLUMN referred_by UUID"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
