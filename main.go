package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"snaplink/internal/auth"
	"snaplink/internal/config"
	"snaplink/internal/db"
	"snaplink/internal/geo"
	"snaplink/internal/handlers"
	applog "snaplink/internal/log"
	"snaplink/internal/middleware"
	"snaplink/internal/observability"
	"snaplink/internal/rabbitmq"
	"snaplink/internal/repositories"
	"snaplink/internal/storage"
	"snaplink/internal/telemetry"
	"snaplink/internal/ws"
)

const serviceName = "snaplink"

func main() {
	cfg, err := config.Load(os.Getenv("SNAPLINK_CONFIG"))
	if err != nil {
		bootLogger := applog.New("info")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := applog.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init tracing")
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = shutdownTracing(flushCtx)
		}()
	}

	database, err := db.Connect(cfg.DatabaseDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info().Str("mode", rabbitmq.PublisherMode(publisher)).Msg("amqp publisher ready")

	audit := telemetry.NewAuditEmitter(publisher, "audit.snaplink", serviceName, cfg.Environment)

	profileRepo := repositories.NewProfileRepo(database)
	contactRepo := repositories.NewContactRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	groupMessageRepo := repositories.NewGroupMessageRepo(database)
	storyRepo := repositories.NewStoryRepo(database)

	authService := auth.NewService(profileRepo, &auth.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: serviceName,
		TTL:    cfg.JWTTTL,
	})

	var locator geo.Locator
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		locator = geo.NewRedisLocator(redisClient, storyRepo, cfg.StoryWindow, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis story locator")
	} else {
		locator = geo.NewScanLocator(storyRepo, cfg.StoryWindow)
		logger.Info().Msg("using db scan story locator")
	}

	var objectStore storage.ObjectStorage
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
		objectStore = store
	}

	hub := ws.NewHub(logger)

	authHandler := handlers.NewAuthHandler(authService, audit)
	profileHandler := handlers.NewProfileHandler(profileRepo, authService, audit)
	contactHandler := handlers.NewContactHandler(contactRepo, hub)
	chatHandler := handlers.NewChatHandler(messageRepo, profileRepo, hub)
	groupHandler := handlers.NewGroupHandler(groupRepo, groupMessageRepo, hub)
	storyHandler := handlers.NewStoryHandler(storyRepo, profileRepo, locator, cfg.StoryRadiusKm)
	mediaHandler := handlers.NewMediaHandler(objectStore)
	feedHandler := ws.NewFeedHandler(hub, authService, groupRepo)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/signup", authHandler.SignUp)
	router.POST("/auth/signin", authHandler.SignIn)

	authMiddleware := middleware.AuthMiddleware(authService)

	router.POST("/auth/signout", authMiddleware, authHandler.SignOut)

	router.GET("/profiles/:user_id", authMiddleware, profileHandler.GetProfile)
	router.PUT("/profiles/me", authMiddleware, profileHandler.UpdateProfile)
	router.DELETE("/profiles/me", authMiddleware, profileHandler.DeleteProfile)

	router.GET("/contacts", authMiddleware, contactHandler.ListContacts)
	router.POST("/contacts", authMiddleware, contactHandler.AddContact)
	router.GET("/contacts/search", authMiddleware, contactHandler.SearchProfiles)

	router.GET("/conversations/:contact_id/messages", authMiddleware, chatHandler.GetConversation)
	router.POST("/conversations/:contact_id/messages", authMiddleware, chatHandler.PostMessage)
	router.GET("/messages/:message_id", authMiddleware, chatHandler.GetMessage)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.GET("/groups/:group_id", authMiddleware, groupHandler.GetGroup)
	router.POST("/groups/:group_id/members", authMiddleware, groupHandler.AddMembers)
	router.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetGroupMessages)
	router.POST("/groups/:group_id/messages", authMiddleware, groupHandler.PostGroupMessage)

	router.POST("/stories", authMiddleware, storyHandler.CreateStory)
	router.GET("/stories/nearby", authMiddleware, storyHandler.NearbyStories)

	router.POST("/media/chat-image", authMiddleware, mediaHandler.UploadChatImage)
	router.POST("/media/story-image", authMiddleware, mediaHandler.UploadStoryImage)
	router.POST("/media/chat-video", authMiddleware, mediaHandler.UploadChatVideo)

	router.GET("/ws", feedHandler.Handle)

	handlers.RegisterDebugRoutes(router, audit, hub, cfg.Environment != "prod")

	server := &http.Server{Addr: cfg.Addr, Handler: router}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
