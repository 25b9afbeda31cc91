package http

import (
	"net/http"
	"strings"

	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

// ISocialConnectionHandler lists and manages platform connections.
type ISocialConnectionHandler interface {
	List(c *gin.Context)
	Connect(c *gin.Context)
	Disconnect(c *gin.Context)
}

type SocialConnectionHandler struct {
	oauthUsecase usecase.IYouTubeOAuthUsecase
}

func NewSocialConnectionHandler(oauthUsecase usecase.IYouTubeOAuthUsecase) ISocialConnectionHandler {
	return &SocialConnectionHandler{oauthUsecase: oauthUsecase}
}

// List handles GET /api/social-connections
func (h *SocialConnectionHandler) List(c *gin.Context) {
	conns, err := h.oauthUsecase.Connections(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load connections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// Connect handles POST /api/social-connections/:platform/connect. Only YouTube
// connects, through the consent flow started at the setup endpoint.
func (h *SocialConnectionHandler) Connect(c *gin.Context) {
	platform := strings.ToLower(c.Param("platform"))
	if err := h.oauthUsecase.Connect(c.Request.Context(), userID(c), platform); err != nil {
		respondError(c, err, "Failed to connect platform")
		return
	}
	c.JSON(http.StatusOK, gin.H{"platform": platform, "setup_url": "/api/youtube/oauth/setup"})
}

// Disconnect handles DELETE /api/social-connections/:platform
func (h *SocialConnectionHandler) Disconnect(c *gin.Context) {
	platform := strings.ToLower(c.Param("platform"))
	if err := h.oauthUsecase.Disconnect(c.Request.Context(), userID(c), platform); err != nil {
		respondError(c, err, "Failed to disconnect platform")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "platform": platform})
}
