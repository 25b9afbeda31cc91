package http

import (
	"errors"
	"net/http"

	"clip-and-ship/domain/dto"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// IVideoWebhookHandler receives the callbacks of the generation automation.
type IVideoWebhookHandler interface {
	HandleWebhook(c *gin.Context)
	VideoReady(c *gin.Context)
	UploadComplete(c *gin.Context)
}

type VideoWebhookHandler struct {
	webhookUsecase usecase.IVideoWebhookUsecase
}

func NewVideoWebhookHandler(webhookUsecase usecase.IVideoWebhookUsecase) IVideoWebhookHandler {
	return &VideoWebhookHandler{webhookUsecase: webhookUsecase}
}

// HandleWebhook handles POST /functions/handle-video-webhook
func (h *VideoWebhookHandler) HandleWebhook(c *gin.Context) {
	var req dto.VideoWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": err.Error()})
		return
	}
	if err := h.webhookUsecase.HandlePhase(c.Request.Context(), &req); err != nil {
		webhookError(c, err, "Webhook processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed successfully"})
}

// VideoReady handles POST /functions/video-ready
func (h *VideoWebhookHandler) VideoReady(c *gin.Context) {
	var req dto.VideoReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	v, err := h.webhookUsecase.VideoReady(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to update video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video ready for approval", "data": v})
}

// UploadComplete handles POST /functions/video-upload-complete
func (h *VideoWebhookHandler) UploadComplete(c *gin.Context) {
	var req dto.UploadCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	completionID, err := h.webhookUsecase.CompleteUpload(c.Request.Context(), &req)
	if err != nil {
		var ve *usecase.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "completion_id": completionID})
			return
		}
		report(c, http.StatusInternalServerError, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Upload completion processing failed",
			"details":       err.Error(),
			"completion_id": completionID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Upload completion processed",
		"completion_id": completionID,
	})
}

func webhookError(c *gin.Context, err error, fallback string) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": ve.Message})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found", "details": err.Error()})
	case errors.Is(err, usecase.ErrConfiguration):
		report(c, http.StatusInternalServerError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorConfiguration, "details": err.Error()})
	default:
		report(c, http.StatusInternalServerError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}
