package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/cache"
	"clip-and-ship/infrastructure/clients/automation"
	"clip-and-ship/infrastructure/clients/media"
	youtubeclient "clip-and-ship/infrastructure/clients/youtube"
	"clip-and-ship/infrastructure/configuration"
	"clip-and-ship/infrastructure/handshake"
	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/infrastructure/metrics"
	"clip-and-ship/infrastructure/persistence"
	"clip-and-ship/infrastructure/pubsub"
	"clip-and-ship/infrastructure/realtime"
	"clip-and-ship/infrastructure/servicebus"
	"clip-and-ship/infrastructure/storage"
	httpHandler "clip-and-ship/interfaces/http"
	"clip-and-ship/server"
	"clip-and-ship/usecase"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(2 * time.Second)
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	initSentry()
	defer sentry.Flush(2 * time.Second)

	m := metrics.Registry(configuration.C.Metrics.Namespace)

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Database initialization failed")
	}
	defer db.Close()
	if err := persistence.EnsureSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Failed ensuring database schema")
	}

	// Redis is optional: without it the broadcast and storage completion
	// channels are disabled and the OAuth wait falls back to hub and poll.
	var redisStore *cache.Store
	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
		configuration.C.RedisClient.DB,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cross-instance OAuth delivery")
	} else {
		defer redisClient.Close()
		redisStore = cache.NewStore(redisClient)
	}

	publisher, closePublisher := initPublisher(ctx)
	defer closePublisher()

	// Repositories
	ideaRepo := persistence.NewVideoIdeaRepository(db)
	pendingRepo := persistence.NewPendingVideoRepository(db)
	profileRepo := persistence.NewProfileRepository(db)
	ledgerRepo := persistence.NewCreditLedgerRepository(db)
	tokenRepo := persistence.NewOAuthTokenRepository(db)
	auditRepo := persistence.NewAuditLogRepository(db)
	uploadRepo := persistence.NewYouTubeUploadRepository(db)

	hub := realtime.NewHub()

	var notifier *handshake.Notifier
	waitChannels := []handshake.Channel{handshake.NewHubChannel(hub)}
	if redisStore != nil {
		notifier = handshake.NewNotifier(redisStore, redisStore, hub)
		waitChannels = append(waitChannels,
			handshake.NewBroadcastChannel(redisStore),
			handshake.NewStorageChannel(redisStore, time.Second),
		)
	} else {
		notifier = handshake.NewNotifier(nil, nil, hub)
	}

	automationClient := automation.NewClient(configuration.C.Automation, auditRepo, m)
	fetcher := media.NewHTTPFetcher(5 * time.Minute)

	youtubeConfig := configuration.GetYouTubeConfig()
	if missing := youtubeConfig.Missing(); len(missing) > 0 {
		logger.GetLogger().WithField("missing", missing).Warn("YouTube OAuth not fully configured - setup requests will fail")
	}
	provider := youtubeclient.NewOAuthProvider(youtubeConfig)
	youtubeClient := youtubeclient.NewClient()

	var voiceStore repository.IVoiceStore
	if store, err := storage.NewVoiceStore(ctx, configuration.C.Storage); err == nil {
		voiceStore = store
	} else if !errors.Is(err, storage.ErrDisabled) {
		logger.GetLogger().WithField("error", err).Error("Voice storage initialization failed")
	}

	// Usecases
	oauthUsecase := usecase.NewYouTubeOAuthUsecase(youtubeConfig, provider, youtubeClient, tokenRepo, notifier, waitChannels, m)
	uploadUsecase := usecase.NewYouTubeUploadUsecase(tokenRepo, provider, youtubeClient, fetcher, uploadRepo, ideaRepo, hub, publisher)
	ideaUsecase := usecase.NewVideoIdeaUsecase(usecase.VideoIdeaDeps{
		Ideas:           ideaRepo,
		Ledger:          ledgerRepo,
		Profiles:        profileRepo,
		Tokens:          tokenRepo,
		Provider:        provider,
		Automation:      automationClient,
		Uploader:        uploadUsecase,
		Hub:             hub,
		Publisher:       publisher,
		Metrics:         m,
		CallbackBaseURL: configuration.C.Automation.CallbackBaseURL,
		AsyncPublish:    true,
	})
	webhookUsecase := usecase.NewVideoWebhookUsecase(ideaRepo, pendingRepo, hub, publisher, m, usecase.WebhookOptions{
		FallbackTestUserID: configuration.C.Webhook.FallbackTestUserID,
		RecencyFallback:    *configuration.C.Webhook.ApprovalRecencyFallback,
	})
	profileUsecase := usecase.NewProfileUsecase(profileRepo, ledgerRepo)
	referralUsecase := usecase.NewReferralUsecase(profileRepo, m)
	voiceUsecase := usecase.NewVoiceUsecase(voiceStore)
	demoUsecase := usecase.NewDemoUsecase(automationClient)
	healthUsecase := usecase.NewHealthUsecase(auditRepo, healthProbes(db, redisStore)...)

	router := server.InitiateRouter(server.Handlers{
		Webhook:     httpHandler.NewVideoWebhookHandler(webhookUsecase),
		YouTubeAuth: httpHandler.NewYouTubeAuthHandler(oauthUsecase, app.AppURL),
		Social:      httpHandler.NewSocialConnectionHandler(oauthUsecase),
		VideoIdea:   httpHandler.NewVideoIdeaHandler(ideaUsecase),
		YouTube:     httpHandler.NewYouTubeHandler(uploadUsecase),
		Account:     httpHandler.NewAccountHandler(profileUsecase, referralUsecase),
		Media:       httpHandler.NewMediaHandler(voiceUsecase, demoUsecase),
		Health:      httpHandler.NewHealthHandler(healthUsecase),
		Stream:      hub.Serve,
	}, server.Options{
		SecretKey:      app.SecretKey,
		ServiceKey:     configuration.C.Webhook.ServiceKey,
		AllowedOrigins: allowedOrigins(app),
		Metrics:        m,
	})

	// Rejected ideas are deleted on decision; the sweep removes leftovers.
	g.Go(func() error {
		return every(ctx, configuration.Duration(configuration.C.Jobs.RejectedSweepInterval, 5*time.Minute), func(ctx context.Context) {
			deleted, err := ideaUsecase.SweepRejected(ctx)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Rejected video sweep failed")
				return
			}
			if deleted > 0 {
				logger.GetLogger().WithField("deleted", deleted).Info("Rejected videos swept")
			}
		})
	})
	g.Go(func() error {
		return every(ctx, configuration.Duration(configuration.C.Jobs.HealthProbeInterval, time.Minute), func(ctx context.Context) {
			report := healthUsecase.Check(ctx)
			if report.Status != usecase.HealthUp {
				logger.GetLogger().WithField("components", report.Components).Warn("Health probe reported a degraded dependency")
			}
		})
	})

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if err := ideaUsecase.Drain(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Background publishing did not finish before shutdown")
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		os.Exit(2)
	}
}

func initSentry() {
	dsn := configuration.C.Sentry.DSN
	if dsn == "" {
		logger.GetLogger().Info("SENTRY_DSN not set; error reporting disabled")
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 0.1,
		Environment:      configuration.C.Sentry.Environment,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Sentry initialization failed")
		return
	}
	logger.GetLogger().Info("Sentry initialized")
}

// initPublisher selects the lifecycle event bus. A nil publisher disables it.
func initPublisher(ctx context.Context) (repository.IEventPublisher, func()) {
	switch configuration.C.Events.Driver {
	case "pubsub":
		client, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
			return nil, func() {}
		}
		p := pubsub.NewEventPublisher(client, configuration.C.Pubsub.Topic)
		return p, func() {
			p.Close()
			_ = client.Close()
		}
	case "servicebus":
		client, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without lifecycle events")
			return nil, func() {}
		}
		return servicebus.NewEventPublisher(client, configuration.C.ServiceBus.Queue), func() {
			_ = client.Close(context.Background())
		}
	case "":
		logger.GetLogger().Info("No event bus configured; lifecycle events stay in-process")
	default:
		logger.GetLogger().WithField("driver", configuration.C.Events.Driver).Warn("Unknown event bus driver")
	}
	return nil, func() {}
}

func healthProbes(db *sql.DB, store *cache.Store) []usecase.Probe {
	probes := []usecase.Probe{{Component: "postgres", Ping: db.PingContext}}
	if store != nil {
		probes = append(probes, usecase.Probe{Component: "redis", Ping: store.Ping})
	}
	return probes
}

func allowedOrigins(app configuration.App) []string {
	if len(app.AllowedOrigins) > 0 {
		return app.AllowedOrigins
	}
	return []string{"http://localhost:3000", "https://clipandship.ca"}
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, interval/2)
			fn(runCtx)
			cancel()
		}
	}
}
