package http

import (
	"net/http"

	"clip-and-ship/domain/dto"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// IMediaHandler accepts voice files and demo submissions.
type IMediaHandler interface {
	UploadVoice(c *gin.Context)
	SubmitDemo(c *gin.Context)
}

type MediaHandler struct {
	voiceUsecase usecase.IVoiceUsecase
	demoUsecase  usecase.IDemoUsecase
}

func NewMediaHandler(voiceUsecase usecase.IVoiceUsecase, demoUsecase usecase.IDemoUsecase) IMediaHandler {
	return &MediaHandler{voiceUsecase: voiceUsecase, demoUsecase: demoUsecase}
}

// UploadVoice handles POST /api/voice-files (multipart field "file")
func (h *MediaHandler) UploadVoice(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxVoiceFileSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing voice file", "details": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err, "Failed to read voice file")
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Unable to close uploaded file")
		}
	}()

	url, err := h.voiceUsecase.Upload(c.Request.Context(), userID(c), usecase.VoiceFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, err, "Failed to store voice file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"voice_file_url": url})
}

// SubmitDemo handles POST /functions/submit-demo-video
func (h *MediaHandler) SubmitDemo(c *gin.Context) {
	var req dto.DemoVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	res, err := h.demoUsecase.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Demo submission failed")
		return
	}
	c.JSON(http.StatusOK, res)
}
