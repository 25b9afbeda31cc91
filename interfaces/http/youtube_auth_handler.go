package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

const (
	defaultWaitTimeout = 30 * time.Second
	maxWaitTimeout     = 2 * time.Minute
)

// IYouTubeAuthHandler defines the interface for YouTube authentication handlers
type IYouTubeAuthHandler interface {
	Setup(c *gin.Context)
	Callback(c *gin.Context)
	Status(c *gin.Context)
	Wait(c *gin.Context)
	Diagnostics(c *gin.Context)
}

// YouTubeAuthHandler serves the consent flow endpoints
type YouTubeAuthHandler struct {
	oauthUsecase usecase.IYouTubeOAuthUsecase
	appURL       string
}

// NewYouTubeAuthHandler creates a new YouTube auth handler. appURL is where the
// result page sends the browser when the popup cannot close itself.
func NewYouTubeAuthHandler(oauthUsecase usecase.IYouTubeOAuthUsecase, appURL string) IYouTubeAuthHandler {
	return &YouTubeAuthHandler{oauthUsecase: oauthUsecase, appURL: strings.TrimRight(appURL, "/")}
}

// Setup handles POST /functions/youtube-oauth-setup
func (h *YouTubeAuthHandler) Setup(c *gin.Context) {
	requestID := uuid.NewString()
	var req dto.OAuthSetupRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c, err)
			return
		}
	}
	uid := userID(c)
	if !req.DemoMode && uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrorUnauthorized, "request_id": requestID})
		return
	}

	res, err := h.oauthUsecase.Setup(c.Request.Context(), uid, req)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":      err,
			"request_id": requestID,
		}).Error("OAuth setup failed")
		status := http.StatusInternalServerError
		if statusOf(err) == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		report(c, status, err)
		c.JSON(status, gin.H{"error": "OAuth setup failed", "details": err.Error(), "request_id": requestID})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Callback handles GET /functions/youtube-oauth-callback
func (h *YouTubeAuthHandler) Callback(c *gin.Context) {
	page := h.oauthUsecase.Callback(c.Request.Context(), dto.OAuthCallbackParams{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
		SessionID:        c.Query("session_id"),
	})

	c.Header("Cross-Origin-Opener-Policy", "unsafe-none")
	c.Header("Cross-Origin-Embedder-Policy", "unsafe-none")
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := callbackTemplate.Execute(c.Writer, h.pageData(page)); err != nil {
		logger.GetLogger().WithField("error", err).Error("Unable to render OAuth result page")
	}
}

// Status handles GET /api/youtube/oauth/status
func (h *YouTubeAuthHandler) Status(c *gin.Context) {
	res, err := h.oauthUsecase.Status(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load connection status")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Wait handles GET /api/youtube/oauth/wait?session_id=&timeout=
func (h *YouTubeAuthHandler) Wait(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	timeout := defaultWaitTimeout
	if raw := c.Query("timeout"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timeout must be a positive number of seconds"})
			return
		}
		timeout = time.Duration(secs) * time.Second
	}
	if timeout > maxWaitTimeout {
		timeout = maxWaitTimeout
	}
	c.JSON(http.StatusOK, h.oauthUsecase.Wait(c.Request.Context(), userID(c), sessionID, timeout))
}

// Diagnostics handles GET /functions/test-youtube-oauth
func (h *YouTubeAuthHandler) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.oauthUsecase.Diagnostics())
}

type fallbackQuery struct {
	YouTube   string `url:"youtube"`
	SessionID string `url:"session_id,omitempty"`
	Error     string `url:"error,omitempty"`
}

type browserMessage struct {
	Type        string `json:"type"`
	ChannelName string `json:"channelName,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	SessionID   string `json:"sessionId"`
}

type storedResult struct {
	Success     bool   `json:"success"`
	ChannelName string `json:"channelName,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type callbackPageData struct {
	Title       string
	Heading     string
	Body        string
	Success     bool
	SessionID   string
	Message     browserMessage
	Stored      storedResult
	RedirectURL string
}

func (h *YouTubeAuthHandler) pageData(p *usecase.CallbackPage) callbackPageData {
	d := callbackPageData{Success: p.Success, SessionID: p.SessionID}
	q := fallbackQuery{YouTube: "connected", SessionID: p.SessionID}
	switch {
	case p.Success:
		d.Title = "YouTube Connected Successfully"
		d.Heading = "YouTube Connected!"
		d.Body = "Your channel " + p.ChannelName + " is now connected. This window will close automatically."
		d.Message = browserMessage{Type: "YOUTUBE_AUTH_SUCCESS", ChannelName: p.ChannelName, Timestamp: p.Timestamp, SessionID: p.SessionID}
		d.Stored = storedResult{Success: true, ChannelName: p.ChannelName, Timestamp: p.Timestamp}
	case p.Expired:
		d.Title = "Session Expired"
		d.Heading = "Session Expired"
		d.Body = "Please try connecting to YouTube again."
		q.YouTube, q.Error = "error", "session_expired"
	default:
		d.Title = "YouTube Connection Failed"
		d.Heading = "Connection Failed"
		d.Body = p.Message
		q.YouTube, q.Error = "error", p.Message
	}
	if !p.Success {
		d.Message = browserMessage{Type: "YOUTUBE_AUTH_ERROR", Error: p.Message, Timestamp: p.Timestamp, SessionID: p.SessionID}
		d.Stored = storedResult{Error: p.Message, Timestamp: p.Timestamp}
	}
	if h.appURL != "" {
		d.RedirectURL = h.appURL + "/app"
		if v, err := query.Values(q); err == nil {
			d.RedirectURL += "?" + v.Encode()
		}
	}
	return d
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0;background:#0f172a;color:#e2e8f0}
.card{max-width:420px;padding:32px;border-radius:12px;background:#1e293b;text-align:center}
.ok{color:#4ade80}.fail{color:#f87171}
</style>
</head>
<body>
<div class="card">
<h1 class="{{if .Success}}ok{{else}}fail{{end}}">{{.Heading}}</h1>
<p>{{.Body}}</p>
</div>
<script>
(function () {
  var sessionId = {{.SessionID}};
  var message = {{.Message}};
  var stored = {{.Stored}};
  var redirectURL = {{.RedirectURL}};
  try { if (window.opener && !window.opener.closed) { window.opener.postMessage(message, '*'); } } catch (e) {}
  try { if (window.parent && window.parent !== window) { window.parent.postMessage(message, '*'); } } catch (e) {}
  if (sessionId) {
    try {
      if (typeof BroadcastChannel !== 'undefined') {
        var channel = new BroadcastChannel('youtube_auth_' + sessionId);
        channel.postMessage(message);
        channel.close();
      }
    } catch (e) {}
    try { localStorage.setItem('youtube_auth_result_' + sessionId, JSON.stringify(stored)); } catch (e) {}
  }
  setTimeout(function () {
    try { window.close(); } catch (e) {}
    if (redirectURL) { setTimeout(function () { window.location.href = redirectURL; }, 500); }
  }, {{if .Success}}300{{else}}2500{{end}});
})();
</script>
</body>
</html>
`))
