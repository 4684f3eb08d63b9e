package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
	"github.com/ccotek/cocoti-pool-flow/internal/media"
	"github.com/ccotek/cocoti-pool-flow/internal/router"
	"github.com/ccotek/cocoti-pool-flow/internal/scheduler"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
)

func main() {
	// load configuration
	cfg := config.Load()

	// initialize logger
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.Output == "file" {
		fileLogger, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	} else if stdLogger, err := logger.New(level); err == nil {
		logger.SetDefaultLogger(stdLogger)
	}

	// token store: postgres when configured, in-memory otherwise
	var tokens token.Store
	if cfg.Database.Host != "" {
		store, err := token.OpenGormStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize token store: %v", err)
		}
		tokens = store
	} else {
		logger.Warn("No database configured; tokens will not survive a restart")
		tokens = token.NewMemoryStore()
	}

	// core API client
	client := backend.New(cfg.Backend)

	// illustration uploader
	var uploader media.Uploader
	if cfg.Media.Provider == "cloudinary" {
		cloudinaryUploader, err := media.NewCloudinaryUploader(cfg.Media)
		if err != nil {
			logger.Fatal("Failed to initialize cloudinary uploader: %v", err)
		}
		uploader = cloudinaryUploader
	} else {
		uploader = media.NewBackendUploader(client)
	}

	// checkout bridge
	bridge, err := checkout.New(cfg.PayDunya)
	if err != nil {
		logger.Fatal("Failed to initialize checkout bridge: %v", err)
	}
	defer bridge.Close()

	// wizard session registry and flows
	sessions := flow.NewRegistry(flow.SessionTTL(cfg.Session.TTLMinutes))
	bridge.RegisterProcessor(flow.NewSettlementProcessor(sessions))

	contributionFlow := flow.NewContributionFlow(client, tokens, bridge, sessions)
	creationFlow := flow.NewCreationFlow(client, tokens, uploader, sessions)

	// gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// routes
	r := router.Setup(router.Deps{
		Backend:          client,
		Tokens:           tokens,
		Bridge:           bridge,
		Sessions:         sessions,
		ContributionFlow: contributionFlow,
		CreationFlow:     creationFlow,
	})

	// background jobs
	manager := scheduler.Start(sessions, cfg)
	defer manager.Stop()

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
