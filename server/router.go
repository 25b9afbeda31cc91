package server

import (
	"net/http"
	"time"

	"clip-and-ship/infrastructure/metrics"
	httpHandler "clip-and-ship/interfaces/http"
	"clip-and-ship/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Webhook     httpHandler.IVideoWebhookHandler
	YouTubeAuth httpHandler.IYouTubeAuthHandler
	Social      httpHandler.ISocialConnectionHandler
	VideoIdea   httpHandler.IVideoIdeaHandler
	YouTube     httpHandler.IYouTubeHandler
	Account     httpHandler.IAccountHandler
	Media       httpHandler.IMediaHandler
	Health      httpHandler.IHealthHandler
	// Stream serves the per user realtime event stream.
	Stream gin.HandlerFunc
}

// Options carries the secrets and origins the router needs.
type Options struct {
	SecretKey      string
	ServiceKey     string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
}

func InitiateRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
	}

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Automation callbacks and legacy function routes accept any origin.
	functions := router.Group("/functions")
	functions.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-Info", "Apikey", "X-Service-Key"},
		MaxAge:          12 * time.Hour,
	}))
	functions.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	authed := middleware.Auth(opts.SecretKey)
	service := middleware.ServiceKey(opts.ServiceKey)

	functions.POST("/handle-video-webhook", h.Webhook.HandleWebhook)
	functions.POST("/video-ready", h.Webhook.VideoReady)
	functions.POST("/video-upload-complete", h.Webhook.UploadComplete)
	functions.POST("/youtube-oauth-setup", middleware.OptionalAuth(opts.SecretKey), h.YouTubeAuth.Setup)
	functions.GET("/youtube-oauth-callback", h.YouTubeAuth.Callback)
	functions.GET("/test-youtube-oauth", h.YouTubeAuth.Diagnostics)
	functions.POST("/submit-video", authed, h.VideoIdea.Submit)
	functions.POST("/delete-rejected-videos", service, h.VideoIdea.SweepRejected)
	functions.POST("/youtube-upload", service, h.YouTube.Upload)
	functions.POST("/submit-demo-video", h.Media.SubmitDemo)
	functions.POST("/complete-referral", service, h.Account.CompleteReferral)
	functions.POST("/generate-referral-code", authed, h.Account.ReferralCode)

	router.GET("/auth/youtube/callback", h.YouTubeAuth.Callback)

	api := router.Group("api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.POST("/youtube/oauth/setup", middleware.OptionalAuth(opts.SecretKey), h.YouTubeAuth.Setup)

	api.Use(authed)
	{
		api.GET("/stream", h.Stream)
		api.GET("/profile", h.Account.Profile)
		api.POST("/referral/code", h.Account.ReferralCode)
		api.POST("/voice-files", h.Media.UploadVoice)

		api.GET("/youtube/oauth/status", h.YouTubeAuth.Status)
		api.GET("/youtube/oauth/wait", h.YouTubeAuth.Wait)
		api.POST("/youtube/upload", h.YouTube.Upload)

		api.GET("/social-connections", h.Social.List)
		api.POST("/social-connections/:platform/connect", h.Social.Connect)
		api.DELETE("/social-connections/:platform", h.Social.Disconnect)

		api.GET("/video-ideas", h.VideoIdea.List)
		api.POST("/video-ideas", h.VideoIdea.Submit)
		api.PATCH("/video-ideas/:id", h.VideoIdea.Update)
		api.POST("/video-ideas/:id/approval", h.VideoIdea.Approval)
	}

	return router
}
