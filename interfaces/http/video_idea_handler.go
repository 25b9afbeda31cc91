package http

import (
	"net/http"

	"clip-and-ship/domain/dto"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// IVideoIdeaHandler serves the user facing video idea endpoints.
type IVideoIdeaHandler interface {
	Submit(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Approval(c *gin.Context)
	SweepRejected(c *gin.Context)
}

type VideoIdeaHandler struct {
	videoIdeaUsecase usecase.IVideoIdeaUsecase
}

func NewVideoIdeaHandler(videoIdeaUsecase usecase.IVideoIdeaUsecase) IVideoIdeaHandler {
	return &VideoIdeaHandler{videoIdeaUsecase: videoIdeaUsecase}
}

// Submit handles POST /api/video-ideas
func (h *VideoIdeaHandler) Submit(c *gin.Context) {
	var req dto.SubmitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	res, err := h.videoIdeaUsecase.Submit(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to submit video idea")
		return
	}
	c.JSON(http.StatusOK, res)
}

// List handles GET /api/video-ideas
func (h *VideoIdeaHandler) List(c *gin.Context) {
	ideas, err := h.videoIdeaUsecase.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load video ideas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ideas})
}

// Update handles PATCH /api/video-ideas/:id
func (h *VideoIdeaHandler) Update(c *gin.Context) {
	var req dto.UpdateVideoIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	v, err := h.videoIdeaUsecase.Update(c.Request.Context(), userID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update video idea")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// Approval handles POST /api/video-ideas/:id/approval
func (h *VideoIdeaHandler) Approval(c *gin.Context) {
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	v, err := h.videoIdeaUsecase.Decide(c.Request.Context(), userID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to process approval")
		return
	}
	if v == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

// SweepRejected handles POST /functions/delete-rejected-videos
func (h *VideoIdeaHandler) SweepRejected(c *gin.Context) {
	n, err := h.videoIdeaUsecase.SweepRejected(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to delete rejected videos")
		return
	}
	logger.GetLogger().WithField("deleted", n).Info("Rejected videos swept on request")
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": n})
}
