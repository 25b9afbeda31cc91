package http

import (
	"net/http"

	"clip-and-ship/domain/dto"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// IYouTubeHandler defines the interface for YouTube HTTP handlers
type IYouTubeHandler interface {
	Upload(ctx *gin.Context)
}

// YouTubeHandler implements the YouTube HTTP handlers
type YouTubeHandler struct {
	uploadUsecase usecase.IYouTubeUploadUsecase
}

// NewYouTubeHandler creates a new YouTube handler instance
func NewYouTubeHandler(uploadUsecase usecase.IYouTubeUploadUsecase) IYouTubeHandler {
	return &YouTubeHandler{uploadUsecase: uploadUsecase}
}

// Upload handles POST /functions/youtube-upload and POST /api/youtube/upload.
// On the authenticated route the token owner always wins over the body.
func (h *YouTubeHandler) Upload(ctx *gin.Context) {
	var req dto.YouTubeUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badJSON(ctx, err)
		return
	}
	if uid := userID(ctx); uid != "" {
		req.UserID = uid
	}

	res, err := h.uploadUsecase.Upload(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, "Failed to upload video to YouTube")
		return
	}
	ctx.JSON(http.StatusOK, res)
}
