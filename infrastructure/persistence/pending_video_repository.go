package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"clip-and-ship/domain/model"
)

type PendingVideoRepository struct{ db *sql.DB }

func NewPendingVideoRepository(db *sql.DB) *PendingVideoRepository {
	return &PendingVideoRepository{db: db}
}

func (r *PendingVideoRepository) Create(ctx context.Context, v *model.PendingVideo) error {
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	if v.Status == "" {
		v.Status = model.PendingApproval
	}
	if len(v.UploadTargets) == 0 {
		v.UploadTargets = json.RawMessage("[]")
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO pending_videos (execution_id, user_id, video_url, idea, caption, titles_descriptions, upload_targets, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9) RETURNING id`,
		v.ExecutionID, v.UserID, v.VideoURL, v.Idea, nullString(v.Caption), rawJSON(v.TitlesDescriptions), string(v.UploadTargets), v.Status, now)
	if err := row.Scan(&v.ID); err != nil {
		return uniqueViolation(err)
	}
	return nil
}

func (r *PendingVideoRepository) CompleteByExecutionID(ctx context.Context, executionID string, uploadResults json.RawMessage) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE pending_videos SET status=$2, upload_results=$3, updated_at=$4 WHERE execution_id=$1`,
		executionID, model.PendingCompleted, rawJSON(uploadResults), time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func rawJSON(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}
