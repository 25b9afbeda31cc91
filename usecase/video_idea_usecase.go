package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/infrastructure/utils"

	"golang.org/x/oauth2"
)

const (
	maxIdeaLength = 5000
	minIdeaLength = 10
)

var (
	javascriptScheme = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerAttr = regexp.MustCompile(`(?i)on\w+=`)
	blockedContent   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(spam|scam|phishing)\b`),
		regexp.MustCompile(`(?i)\b(hack|exploit|malware)\b`),
		regexp.MustCompile(`(?i)\b(porn|adult|xxx)\b`),
	}
)

// SanitizeIdea strips markup and script fragments and caps the length.
func SanitizeIdea(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = javascriptScheme.ReplaceAllString(s, "")
	s = eventHandlerAttr.ReplaceAllString(s, "")
	if r := []rune(s); len(r) > maxIdeaLength {
		s = string(r[:maxIdeaLength])
	}
	return s
}

// ContainsBlockedContent reports whether text matches the content filter.
func ContainsBlockedContent(text string) bool {
	for _, re := range blockedContent {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IVideoIdeaUsecase covers submission, editing and approval of video ideas.
type IVideoIdeaUsecase interface {
	Submit(ctx context.Context, userID string, req *dto.SubmitVideoRequest) (*dto.SubmitVideoResponse, error)
	List(ctx context.Context, userID string) ([]model.VideoIdea, error)
	Update(ctx context.Context, userID, id string, req *dto.UpdateVideoIdeaRequest) (*model.VideoIdea, error)
	// Decide approves or rejects a generated video. A rejected video is deleted and nil is returned.
	Decide(ctx context.Context, userID, id string, req *dto.ApprovalRequest) (*model.VideoIdea, error)
	// SweepRejected removes leftover rejected ideas.
	SweepRejected(ctx context.Context) (int64, error)
	// Drain waits for background publishing started by Decide.
	Drain(ctx context.Context) error
}

// VideoIdeaDeps groups the collaborators of the video idea usecase.
type VideoIdeaDeps struct {
	Ideas      repository.IVideoIdea
	Ledger     repository.ICreditLedger
	Profiles   repository.IProfile
	Tokens     repository.IOAuthToken
	Provider   repository.IOAuthProvider
	Automation repository.IAutomation
	Uploader   IYouTubeUploadUsecase
	Hub        Broadcaster
	Publisher  repository.IEventPublisher
	Metrics    *metrics.Metrics
	// CallbackBaseURL is the public base URL the automation calls back.
	CallbackBaseURL string
	// AsyncPublish runs publishing after approval in the background.
	AsyncPublish bool
}

type VideoIdeaUsecase struct {
	deps   VideoIdeaDeps
	events lifecycle
	tasks  sync.WaitGroup
}

func NewVideoIdeaUsecase(deps VideoIdeaDeps) *VideoIdeaUsecase {
	return &VideoIdeaUsecase{deps: deps, events: lifecycle{hub: deps.Hub, publisher: deps.Publisher}}
}

func (u *VideoIdeaUsecase) Submit(ctx context.Context, userID string, req *dto.SubmitVideoRequest) (*dto.SubmitVideoResponse, error) {
	if req == nil || strings.TrimSpace(req.IdeaText) == "" {
		return nil, invalid("idea_text", "Invalid idea_text")
	}
	if len(req.SelectedPlatforms) == 0 {
		return nil, invalid("selected_platforms", "Invalid selected_platforms")
	}
	platforms := generationPlatforms(req.SelectedPlatforms)
	if len(platforms) == 0 {
		return nil, invalid("selected_platforms", "No valid platforms selected")
	}

	ideaText := SanitizeIdea(req.IdeaText)
	if len([]rune(ideaText)) < minIdeaLength {
		return nil, invalid("idea_text", "Idea must be at least %d characters", minIdeaLength)
	}
	if ContainsBlockedContent(ideaText) {
		return nil, invalid("idea_text", "Content contains inappropriate material")
	}
	var voiceURL *string
	if req.VoiceFileURL != "" {
		if !isHTTPURL(req.VoiceFileURL) {
			return nil, invalid("voice_file_url", "Invalid voice file URL")
		}
		voiceURL = &req.VoiceFileURL
	}
	useAIVoice, _ := req.UseAIVoice.(bool)

	profile, err := u.deps.Profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}
	for _, p := range platforms {
		if !model.TierAllowsPlatform(profile.SubscriptionTier, p) {
			return nil, invalid("selected_platforms", "Your %s plan does not include %s", tierName(profile.SubscriptionTier), p)
		}
	}

	idea := &model.VideoIdea{
		UserID:            userID,
		IdeaText:          ideaText,
		SelectedPlatforms: platforms,
		UseAIVoice:        useAIVoice,
		VoiceFileURL:      voiceURL,
		Status:            model.StatusPending,
	}
	description := fmt.Sprintf("Video generation for idea: %s...", utils.Truncate(ideaText, 50, ""))
	remaining, err := u.deps.Ledger.DebitForIdea(ctx, idea, description)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, fmt.Errorf("create video idea: %w", err)
	}
	if u.deps.Metrics != nil {
		u.deps.Metrics.CreditsDebited.Inc()
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"user_id":       userID,
		"video_idea_id": idea.ID,
		"remaining":     remaining,
	})
	log.Info("Video idea submitted")
	u.events.emit(ctx, model.EventInsert, "", idea)

	u.triggerGeneration(ctx, idea, profile.SubscriptionTier)

	return &dto.SubmitVideoResponse{Success: true, VideoIdeaID: idea.ID, RemainingCredits: remaining}, nil
}

// triggerGeneration calls the generation workflow and records the resulting
// status. Status writes are best-effort; the credit is already spent.
func (u *VideoIdeaUsecase) triggerGeneration(ctx context.Context, idea *model.VideoIdea, tier string) {
	log := logger.GetLogger().WithField("video_idea_id", idea.ID)
	if !u.deps.Automation.GenerationConfigured() {
		log.Warn("Generation webhook not configured, idea stays pending")
		return
	}
	req := &dto.GenerationRequest{
		VideoIdeaID:       idea.ID,
		UserID:            idea.UserID,
		IdeaText:          idea.IdeaText,
		SelectedPlatforms: idea.SelectedPlatforms,
		UseAIVoice:        idea.UseAIVoice,
		SubscriptionTier:  tier,
		CallbackURL:       u.callbackURL("/functions/handle-video-webhook"),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	if idea.VoiceFileURL != nil {
		req.VoiceFileURL = *idea.VoiceFileURL
	}

	status, uploadErrors := model.StatusProcessing, map[string]string(nil)
	if err := u.deps.Automation.TriggerGeneration(ctx, req); err != nil {
		status = model.StatusFailed
		msg := err.Error()
		if errors.Is(err, repository.ErrWebhookRejected) {
			msg = "Failed to trigger video generation"
		}
		uploadErrors = map[string]string{"webhook_error": msg}
	}
	if err := u.deps.Ideas.UpdateStatus(ctx, idea.ID, status, uploadErrors); err != nil {
		log.WithField("error", err).Error("Unable to update video idea status")
		return
	}
	idea.Status = status
	u.events.emit(ctx, model.EventUpdate, "", idea)
}

func (u *VideoIdeaUsecase) List(ctx context.Context, userID string) ([]model.VideoIdea, error) {
	list, err := u.deps.Ideas.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list video ideas: %w", err)
	}
	return list, nil
}

func (u *VideoIdeaUsecase) Update(ctx context.Context, userID, id string, req *dto.UpdateVideoIdeaRequest) (*model.VideoIdea, error) {
	if req == nil || (req.IdeaText == nil && req.SelectedPlatforms == nil) {
		return nil, invalid("body", "Nothing to update")
	}
	var ideaText *string
	if req.IdeaText != nil {
		clean := SanitizeIdea(*req.IdeaText)
		if len([]rune(clean)) < minIdeaLength {
			return nil, invalid("idea_text", "Idea must be at least %d characters", minIdeaLength)
		}
		if ContainsBlockedContent(clean) {
			return nil, invalid("idea_text", "Content contains inappropriate material")
		}
		ideaText = &clean
	}
	var platforms []string
	if req.SelectedPlatforms != nil {
		platforms = generationPlatforms(req.SelectedPlatforms)
		if len(platforms) == 0 {
			return nil, invalid("selected_platforms", "No valid platforms selected")
		}
	}
	v, err := u.deps.Ideas.UpdateIdea(ctx, id, userID, ideaText, platforms)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video idea %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("update video idea: %w", err)
	}
	u.events.emit(ctx, model.EventUpdate, "", v)
	return v, nil
}

func (u *VideoIdeaUsecase) Decide(ctx context.Context, userID, id string, req *dto.ApprovalRequest) (*model.VideoIdea, error) {
	if req == nil {
		return nil, invalid("body", "request body is required")
	}
	current, err := u.deps.Ideas.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video idea %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load video idea: %w", err)
	}
	if !current.IsReadyForApproval() {
		return nil, invalid("approval_status", "Video is not ready for approval")
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{"user_id": userID, "video_idea_id": id})

	if !req.Approved {
		if _, err := u.deps.Ideas.Delete(ctx, id, userID); err != nil {
			return nil, fmt.Errorf("delete rejected video: %w", err)
		}
		log.WithField("reason", req.RejectionReason).Info("Video rejected and deleted")
		rejected := model.ApprovalRejected
		current.ApprovalStatus = &rejected
		u.events.emit(ctx, model.EventDelete, "", current)
		return nil, nil
	}

	platforms := current.SelectedPlatforms
	if req.SelectedPlatforms != nil {
		platforms = generationPlatforms(req.SelectedPlatforms)
		if len(platforms) == 0 {
			return nil, invalid("selected_platforms", "No valid platforms selected")
		}
	}
	approved, err := u.deps.Ideas.Approve(ctx, id, userID, platforms, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("approval_status", "Video is not ready for approval")
		}
		return nil, fmt.Errorf("approve video: %w", err)
	}
	log.WithField("platforms", platforms).Info("Video approved")
	u.events.emit(ctx, model.EventUpdate, "", approved)

	if u.deps.AsyncPublish {
		u.tasks.Add(1)
		go func() {
			defer u.tasks.Done()
			u.publish(context.WithoutCancel(ctx), approved)
		}()
	} else {
		u.publish(ctx, approved)
	}
	return approved, nil
}

// publish hands an approved video to the publish workflow, or uploads it to
// YouTube directly when no workflow is configured.
func (u *VideoIdeaUsecase) publish(ctx context.Context, v *model.VideoIdea) {
	log := logger.GetLogger().WithField("video_idea_id", v.ID)
	if v.VideoURL == nil || *v.VideoURL == "" {
		log.Warn("Approved video has no video_url, nothing to publish")
		return
	}

	if u.deps.Automation.PublishConfigured() {
		req, err := u.publishRequest(ctx, v)
		if err == nil {
			err = u.deps.Automation.TriggerPublish(ctx, req)
		}
		if err != nil {
			log.WithField("error", err).Error("Publish workflow failed")
			if uerr := u.deps.Ideas.UpdateStatus(ctx, v.ID, model.StatusFailed, map[string]string{"publish_error": err.Error()}); uerr != nil {
				log.WithField("error", uerr).Error("Unable to record publish failure")
			}
		}
		return
	}

	if !containsPlatform(v.SelectedPlatforms, model.PlatformYouTube) || u.deps.Uploader == nil {
		log.WithField("platforms", v.SelectedPlatforms).Warn("No publish workflow configured and YouTube not selected")
		return
	}
	title := v.IdeaText
	if v.YouTubeTitle != nil && *v.YouTubeTitle != "" {
		title = *v.YouTubeTitle
	}
	description := ""
	if v.Caption != nil {
		description = *v.Caption
	}
	if _, err := u.deps.Uploader.Upload(ctx, &dto.YouTubeUploadRequest{
		VideoIdeaID: v.ID,
		UserID:      v.UserID,
		VideoURL:    *v.VideoURL,
		Title:       title,
		Description: description,
		IsShort:     true,
	}); err != nil {
		log.WithField("error", err).Error("Direct YouTube upload failed")
	}
}

func (u *VideoIdeaUsecase) publishRequest(ctx context.Context, v *model.VideoIdea) (*dto.PublishRequest, error) {
	tier := model.TierFree
	if p, err := u.deps.Profiles.GetByID(ctx, v.UserID); err == nil {
		tier = p.SubscriptionTier
	}
	tokens, err := u.deps.Tokens.ListSocialTokens(ctx, v.UserID)
	if err != nil {
		return nil, fmt.Errorf("list social tokens: %w", err)
	}
	now := time.Now()
	accounts := []dto.SocialAccount{}
	connected := map[string]bool{}
	for i := range tokens {
		t := &tokens[i]
		if !containsPlatform(v.SelectedPlatforms, t.Platform) {
			continue
		}
		if !t.IsValid(now) && !u.refreshSocialToken(ctx, t) {
			continue
		}
		acc := dto.SocialAccount{Platform: t.Platform, AccessToken: t.AccessToken}
		if t.RefreshToken != nil {
			acc.RefreshToken = *t.RefreshToken
		}
		if t.Username != nil {
			acc.Username = *t.Username
		}
		accounts = append(accounts, acc)
		connected[t.Platform] = true
	}

	missing := map[string]string{}
	for _, p := range v.SelectedPlatforms {
		if !connected[p] {
			missing[p] = reconnectMessage(p)
		}
	}
	if len(accounts) == 0 && len(missing) > 0 {
		return nil, fmt.Errorf("%w: no connected account for %s", ErrReconnectRequired, strings.Join(v.SelectedPlatforms, ", "))
	}
	if len(missing) > 0 {
		logger.GetLogger().WithFields(map[string]interface{}{"video_idea_id": v.ID, "platforms": missing}).Warn("Publishing without disconnected platforms")
		if err := u.deps.Ideas.UpdateStatus(ctx, v.ID, v.Status, missing); err != nil {
			logger.GetLogger().WithField("error", err).Error("Unable to record disconnected platforms")
		}
	}

	titles := map[string]string{}
	for platform, title := range map[string]*string{
		model.PlatformYouTube:   v.YouTubeTitle,
		model.PlatformTikTok:    v.TikTokTitle,
		model.PlatformInstagram: v.InstagramTitle,
	} {
		if title != nil && *title != "" {
			titles[platform] = *title
		}
	}
	req := &dto.PublishRequest{
		VideoIdeaID:      v.ID,
		UserID:           v.UserID,
		VideoURL:         *v.VideoURL,
		Titles:           titles,
		Platforms:        v.SelectedPlatforms,
		SubscriptionTier: tier,
		SocialAccounts:   accounts,
		CallbackURL:      u.callbackURL("/functions/video-upload-complete"),
	}
	if v.Caption != nil {
		req.Caption = *v.Caption
	}
	return req, nil
}

// refreshSocialToken renews an expired token in place and stores the result.
// Only YouTube tokens can be renewed here.
func (u *VideoIdeaUsecase) refreshSocialToken(ctx context.Context, t *model.SocialToken) bool {
	if t.Platform != model.PlatformYouTube || u.deps.Provider == nil || t.RefreshToken == nil || *t.RefreshToken == "" {
		return false
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{"user_id": t.UserID, "platform": t.Platform})
	current := &oauth2.Token{AccessToken: t.AccessToken, RefreshToken: *t.RefreshToken}
	if t.ExpiresAt != nil {
		current.Expiry = *t.ExpiresAt
	}
	fresh, err := u.deps.Provider.Refresh(ctx, current)
	if err != nil {
		log.WithField("error", err).Warn("Social token refresh failed")
		return false
	}
	t.AccessToken = fresh.AccessToken
	if !fresh.Expiry.IsZero() {
		expiry := fresh.Expiry
		t.ExpiresAt = &expiry
	}
	if fresh.RefreshToken != "" {
		t.RefreshToken = &fresh.RefreshToken
	}
	if err := u.deps.Tokens.UpsertSocialToken(ctx, t); err != nil {
		log.WithField("error", err).Warn("Unable to persist refreshed social token")
	}
	return true
}

func reconnectMessage(platform string) string {
	if platform == model.PlatformYouTube {
		return ErrReconnectRequired.Error()
	}
	return fmt.Sprintf("%s connection expired or missing; reconnect required", platform)
}

func (u *VideoIdeaUsecase) SweepRejected(ctx context.Context) (int64, error) {
	n, err := u.deps.Ideas.DeleteRejected(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete rejected videos: %w", err)
	}
	if n > 0 {
		logger.GetLogger().WithField("deleted", n).Info("Rejected videos removed")
		if u.deps.Metrics != nil {
			u.deps.Metrics.SweptVideos.Add(float64(n))
		}
	}
	return n, nil
}

func (u *VideoIdeaUsecase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *VideoIdeaUsecase) callbackURL(path string) string {
	if u.deps.CallbackBaseURL == "" {
		return ""
	}
	return strings.TrimRight(u.deps.CallbackBaseURL, "/") + path
}

// generationPlatforms keeps the known generation targets, lower-cased and de-duplicated.
func generationPlatforms(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, name := range in {
		p, ok := model.LookupPlatform(name)
		if !ok || !p.Generation || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p.Name)
	}
	return out
}

func containsPlatform(list []string, platform string) bool {
	for _, p := range list {
		if p == platform {
			return true
		}
	}
	return false
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func tierName(tier string) string {
	if tier == "" {
		return model.TierFree
	}
	return tier
}
