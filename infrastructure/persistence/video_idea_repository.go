package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"

	"github.com/lib/pq"
)

const videoIdeaColumns = `id, user_id, idea_text, selected_platforms, use_ai_voice, voice_file_url, status, approval_status, execution_id,
	video_url, preview_video_url, caption, youtube_title, tiktok_title, instagram_title, environment_prompt, sound_prompt,
	youtube_link, youtube_video_id, tiktok_link, tiktok_video_id, instagram_link, instagram_media_id,
	upload_status, upload_progress, upload_errors, approved_at, rejected_reason, created_at, updated_at`

// publishColumns maps a platform to its link and external id columns.
var publishColumns = map[string][2]string{
	model.PlatformYouTube:   {"youtube_link", "youtube_video_id"},
	model.PlatformTikTok:    {"tiktok_link", "tiktok_video_id"},
	model.PlatformInstagram: {"instagram_link", "instagram_media_id"},
}

type VideoIdeaRepository struct{ db *sql.DB }

func NewVideoIdeaRepository(db *sql.DB) repository.IVideoIdea { return &VideoIdeaRepository{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideoIdea(row rowScanner) (*model.VideoIdea, error) {
	v := &model.VideoIdea{}
	var platforms pq.StringArray
	var voiceFileURL, approvalStatus, executionID, videoURL, previewURL, caption sql.NullString
	var ytTitle, ttTitle, igTitle, envPrompt, soundPrompt sql.NullString
	var ytLink, ytID, ttLink, ttID, igLink, igID, rejectedReason sql.NullString
	var uploadStatus, uploadProgress, uploadErrors []byte
	var approvedAt sql.NullTime
	if err := row.Scan(&v.ID, &v.UserID, &v.IdeaText, &platforms, &v.UseAIVoice, &voiceFileURL, &v.Status, &approvalStatus, &executionID,
		&videoURL, &previewURL, &caption, &ytTitle, &ttTitle, &igTitle, &envPrompt, &soundPrompt,
		&ytLink, &ytID, &ttLink, &ttID, &igLink, &igID,
		&uploadStatus, &uploadProgress, &uploadErrors, &approvedAt, &rejectedReason, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	v.SelectedPlatforms = []string(platforms)
	v.VoiceFileURL = stringPtr(voiceFileURL)
	v.ApprovalStatus = stringPtr(approvalStatus)
	v.ExecutionID = stringPtr(executionID)
	v.VideoURL = stringPtr(videoURL)
	v.PreviewVideoURL = stringPtr(previewURL)
	v.Caption = stringPtr(caption)
	v.YouTubeTitle = stringPtr(ytTitle)
	v.TikTokTitle = stringPtr(ttTitle)
	v.InstagramTitle = stringPtr(igTitle)
	v.EnvironmentPrompt = stringPtr(envPrompt)
	v.SoundPrompt = stringPtr(soundPrompt)
	v.YouTubeLink = stringPtr(ytLink)
	v.YouTubeVideoID = stringPtr(ytID)
	v.TikTokLink = stringPtr(ttLink)
	v.TikTokVideoID = stringPtr(ttID)
	v.InstagramLink = stringPtr(igLink)
	v.InstagramMediaID = stringPtr(igID)
	v.ApprovedAt = timePtr(approvedAt)
	v.RejectedReason = stringPtr(rejectedReason)
	v.UploadStatus = map[string]string{}
	v.UploadProgress = map[string]int{}
	v.UploadErrors = map[string]string{}
	if err := unmarshalJSONB(uploadStatus, &v.UploadStatus); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(uploadProgress, &v.UploadProgress); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(uploadErrors, &v.UploadErrors); err != nil {
		return nil, err
	}
	return v, nil
}

func unmarshalJSONB(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode jsonb: %w", err)
	}
	return nil
}

func jsonbPatch(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(data), nil
}

// insertVideoIdea writes a new idea with the executor of the caller (db or tx).
func insertVideoIdea(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, v *model.VideoIdea) error {
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	if v.Status == "" {
		v.Status = model.StatusPending
	}
	row := q.QueryRowContext(ctx, `INSERT INTO video_ideas (user_id, idea_text, selected_platforms, use_ai_voice, voice_file_url, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		v.UserID, v.IdeaText, pq.Array(v.SelectedPlatforms), v.UseAIVoice, nullString(v.VoiceFileURL), v.Status, now)
	return row.Scan(&v.ID)
}

func (r *VideoIdeaRepository) GetByID(ctx context.Context, id string) (*model.VideoIdea, error) {
	return scanVideoIdea(r.db.QueryRowContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE id=$1`, id))
}

func (r *VideoIdeaRepository) GetByIDForUser(ctx context.Context, id, userID string) (*model.VideoIdea, error) {
	return scanVideoIdea(r.db.QueryRowContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE id=$1 AND user_id=$2`, id, userID))
}

func (r *VideoIdeaRepository) GetByExecutionID(ctx context.Context, executionID string) (*model.VideoIdea, error) {
	return scanVideoIdea(r.db.QueryRowContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE execution_id=$1`, executionID))
}

func (r *VideoIdeaRepository) GetMostRecent(ctx context.Context) (*model.VideoIdea, error) {
	return scanVideoIdea(r.db.QueryRowContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas ORDER BY created_at DESC LIMIT 1`))
}

func (r *VideoIdeaRepository) ListByUser(ctx context.Context, userID string) ([]model.VideoIdea, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.VideoIdea{}
	for rows.Next() {
		v, err := scanVideoIdea(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

func (r *VideoIdeaRepository) MarkGenerated(ctx context.Context, id string, gen model.GeneratedVideo) (*model.VideoIdea, error) {
	q := `UPDATE video_ideas SET
			status='completed',
			approval_status='ready_for_approval',
			video_url=$2,
			preview_video_url=$2,
			caption=COALESCE($3, caption),
			youtube_title=COALESCE($4, youtube_title),
			tiktok_title=COALESCE($5, tiktok_title),
			instagram_title=COALESCE($6, instagram_title),
			environment_prompt=COALESCE($7, environment_prompt),
			sound_prompt=COALESCE($8, sound_prompt),
			execution_id=COALESCE($9, execution_id),
			updated_at=$10
		  WHERE id=$1
		  RETURNING ` + videoIdeaColumns
	return scanVideoIdea(r.db.QueryRowContext(ctx, q, id, gen.VideoURL,
		nullString(gen.Caption), nullString(gen.YouTubeTitle), nullString(gen.TikTokTitle), nullString(gen.InstagramTitle),
		nullString(gen.EnvironmentPrompt), nullString(gen.SoundPrompt), nullString(gen.ExecutionID), time.Now().UTC()))
}

func (r *VideoIdeaRepository) UpdateStatus(ctx context.Context, id, status string, uploadErrors map[string]string) error {
	if uploadErrors == nil {
		uploadErrors = map[string]string{}
	}
	patch, err := jsonbPatch(uploadErrors)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE video_ideas SET status=$2, upload_errors = upload_errors || $3::jsonb, updated_at=$4 WHERE id=$1`,
		id, status, patch, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VideoIdeaRepository) UpdateIdea(ctx context.Context, id, userID string, ideaText *string, platforms []string) (*model.VideoIdea, error) {
	var platformArg any
	if platforms != nil {
		platformArg = pq.Array(platforms)
	}
	q := `UPDATE video_ideas SET idea_text=COALESCE($3, idea_text), selected_platforms=COALESCE($4, selected_platforms), updated_at=$5
		  WHERE id=$1 AND user_id=$2
		  RETURNING ` + videoIdeaColumns
	return scanVideoIdea(r.db.QueryRowContext(ctx, q, id, userID, nullString(ideaText), platformArg, time.Now().UTC()))
}

func (r *VideoIdeaRepository) Approve(ctx context.Context, id, userID string, platforms []string, approvedAt time.Time) (*model.VideoIdea, error) {
	pending := make(map[string]string, len(platforms))
	for _, p := range platforms {
		pending[p] = model.UploadPending
	}
	patch, err := jsonbPatch(pending)
	if err != nil {
		return nil, err
	}
	var platformArg any
	if len(platforms) > 0 {
		platformArg = pq.Array(platforms)
	}
	q := `UPDATE video_ideas SET
			approval_status='approved',
			approved_at=$3,
			selected_platforms=COALESCE($4, selected_platforms),
			upload_status = upload_status || $5::jsonb,
			updated_at=$3
		  WHERE id=$1 AND user_id=$2 AND approval_status='ready_for_approval'
		  RETURNING ` + videoIdeaColumns
	return scanVideoIdea(r.db.QueryRowContext(ctx, q, id, userID, approvedAt, platformArg, patch))
}

func (r *VideoIdeaRepository) ApplyPublishResult(ctx context.Context, id string, result model.PublishResult) (*model.VideoIdea, error) {
	now := time.Now().UTC()
	if !result.Success {
		statusPatch, err := jsonbPatch(map[string]string{result.Platform: model.UploadFailed})
		if err != nil {
			return nil, err
		}
		errorsPatch, err := jsonbPatch(map[string]string{result.Platform: result.ErrorMessage})
		if err != nil {
			return nil, err
		}
		q := `UPDATE video_ideas SET
				status='failed',
				upload_status = upload_status || $2::jsonb,
				upload_errors = upload_errors || $3::jsonb,
				updated_at=$4
			  WHERE id=$1
			  RETURNING ` + videoIdeaColumns
		return scanVideoIdea(r.db.QueryRowContext(ctx, q, id, statusPatch, errorsPatch, now))
	}

	cols, ok := publishColumns[result.Platform]
	if !ok {
		return nil, fmt.Errorf("unsupported publish platform %q", result.Platform)
	}
	statusPatch, err := jsonbPatch(map[string]string{result.Platform: model.UploadCompleted})
	if err != nil {
		return nil, err
	}
	progressPatch, err := jsonbPatch(map[string]int{result.Platform: 100})
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`UPDATE video_ideas SET
			%s=$2,
			%s=$3,
			status='completed',
			approval_status='published',
			upload_status = upload_status || $4::jsonb,
			upload_progress = upload_progress || $5::jsonb,
			updated_at=$6
		  WHERE id=$1
		  RETURNING `+videoIdeaColumns, cols[0], cols[1])
	return scanVideoIdea(r.db.QueryRowContext(ctx, q, id, result.URL, result.VideoID, statusPatch, progressPatch, now))
}

func (r *VideoIdeaRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_ideas WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *VideoIdeaRepository) DeleteRejected(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_ideas WHERE approval_status='rejected'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
