package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/configuration"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
)

// Webhook event names recorded in the audit log.
const (
	EventGeneration = "video_generation"
	EventPublish    = "video_publish"
	EventDemo       = "demo_submission"
)

// ErrNotConfigured is returned when the target webhook URL is empty.
var ErrNotConfigured = repository.ErrWebhookNotConfigured

// maxResponseBody caps how much of a webhook reply is read.
const maxResponseBody = 1 << 20

// Client posts JSON to the external automation webhooks.
type Client struct {
	httpClient *http.Client
	cfg        configuration.Automation
	audit      repository.IAuditLog
	metrics    *metrics.Metrics
}

// NewClient builds the client. audit and m may be nil.
func NewClient(cfg configuration.Automation, audit repository.IAuditLog, m *metrics.Metrics) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}, cfg: cfg, audit: audit, metrics: m}
}

func (c *Client) GenerationConfigured() bool { return c.cfg.GenerationWebhookURL != "" }

func (c *Client) PublishConfigured() bool { return c.cfg.PublishWebhookURL != "" }

func (c *Client) TriggerGeneration(ctx context.Context, req *dto.GenerationRequest) error {
	_, err := c.post(ctx, EventGeneration, c.cfg.GenerationWebhookURL, req.UserID, req.VideoIdeaID, req)
	return err
}

func (c *Client) TriggerPublish(ctx context.Context, req *dto.PublishRequest) error {
	_, err := c.post(ctx, EventPublish, c.cfg.PublishWebhookURL, req.UserID, req.VideoIdeaID, req)
	return err
}

func (c *Client) SubmitDemo(ctx context.Context, payload *dto.DemoWebhookPayload) (json.RawMessage, error) {
	body, err := c.post(ctx, EventDemo, c.cfg.ApprovalWebhookURL, "", "", payload)
	if err != nil {
		return nil, err
	}
	if json.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return json.RawMessage(body), nil
	}
	wrapped, err := json.Marshal(map[string]string{"message": string(body)})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (c *Client) post(ctx context.Context, event, url, userID, videoIdeaID string, payload any) ([]byte, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", event, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "clip-and-ship")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	entry := &model.WebhookLog{Event: event, URL: url, DurationMS: elapsed.Milliseconds()}
	if userID != "" {
		entry.UserID = &userID
	}
	if videoIdeaID != "" {
		entry.VideoIdeaID = &videoIdeaID
	}

	var body []byte
	if err == nil {
		defer resp.Body.Close()
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		entry.StatusCode = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err = fmt.Errorf("%w: %s webhook returned status %d", repository.ErrWebhookRejected, event, resp.StatusCode)
		}
	}
	entry.Success = err == nil
	if err != nil {
		msg := err.Error()
		entry.Error = &msg
	}
	c.record(ctx, entry, elapsed)

	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"event":  event,
			"status": entry.StatusCode,
			"error":  err,
		}).Error("Automation webhook call failed")
		return nil, err
	}
	logger.GetLogger().WithField("event", event).WithField("duration_ms", entry.DurationMS).Info("Automation webhook called")
	return body, nil
}

func (c *Client) record(ctx context.Context, entry *model.WebhookLog, elapsed time.Duration) {
	if c.metrics != nil {
		status := "ok"
		if !entry.Success {
			status = "error"
		}
		c.metrics.OutboundCalls.WithLabelValues(entry.Event, status).Inc()
		c.metrics.OutboundLatency.WithLabelValues(entry.Event).Observe(elapsed.Seconds())
	}
	if c.audit == nil {
		return
	}
	if err := c.audit.RecordWebhook(context.WithoutCancel(ctx), entry); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Unable to record webhook log")
	}
}
