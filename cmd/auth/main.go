package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bitva-auth/internal/config"
	"bitva-auth/internal/database"
	"bitva-auth/internal/handler"
	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/logger"
	"bitva-auth/internal/mailer"
	"bitva-auth/internal/messaging"
	"bitva-auth/internal/middleware"
	"bitva-auth/internal/service"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat, Service: "auth"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	zap.ReplaceGlobals(appLogger)
	zap.L().Info("Logger initialized", zap.String("level", cfg.LogLevel), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	pgPool, err := database.ConnectPostgres(ctx, cfg, database.DefaultRetryPolicy, appLogger.Named("Postgres"))
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if cfg.DBAutoMigrate {
		if err := database.NewMigrator(pgPool, appLogger).Up(); err != nil {
			zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = database.ConnectRedis(ctx, cfg, database.DefaultRetryPolicy, appLogger.Named("Redis"))
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// --- Revocation registry ---
	var revocations interfaces.RevocationStore
	if redisClient != nil {
		revocations = database.NewRedisRevocationStore(redisClient, appLogger)
	} else {
		memStore := database.NewMemoryRevocationStore(appLogger)
		go memStore.Run(ctx, cfg.RevocationSweepInterval)
		revocations = memStore
	}

	// --- Email pipeline ---
	renderer, err := mailer.NewRenderer()
	if err != nil {
		zap.L().Fatal("Failed to load email templates", zap.Error(err))
	}
	smtpSender, err := mailer.NewSMTPSender(mailer.SMTPConfigFrom(cfg), appLogger)
	if err != nil {
		zap.L().Fatal("Failed to configure SMTP sender", zap.Error(err))
	}
	processor := messaging.NewProcessor(appLogger, mailer.NewService(renderer, smtpSender, appLogger))

	var (
		dispatcher interfaces.EmailDispatcher
		consumer   *messaging.Consumer
		publisher  *messaging.RabbitMQEmailPublisher
		inline     *messaging.AsyncDispatcher
	)
	switch cfg.EmailDispatch {
	case config.EmailDispatchRabbitMQ:
		mqConn, err := messaging.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, 50, 5*time.Second, appLogger.Named("RabbitMQ"))
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		publisher, err = messaging.NewRabbitMQEmailPublisher(mqConn, cfg.EmailQueueName, appLogger)
		if err != nil {
			zap.L().Fatal("Failed to create email publisher", zap.Error(err))
		}
		dispatcher = publisher
		consumer = messaging.NewConsumer(mqConn, appLogger, cfg.EmailQueueName, cfg.EmailWorkerCount, cfg.EmailPrefetchCount, processor)
	default:
		inline = messaging.NewAsyncDispatcher(processor, appLogger)
		dispatcher = inline
	}

	// --- Dependency Injection ---
	codec := service.NewTokenCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
	userRepo := database.NewPgUserRepository(pgPool, appLogger)
	accounts := service.NewAccountService(service.Deps{
		Users:      userRepo,
		Creds:      service.NewCredentialStore(cfg.PasswordPepper),
		Codec:      codec,
		Sessions:   service.NewSessionGate(codec, revocations, appLogger),
		Tokens:     service.NewSingleUseTokenManager(userRepo, cfg.SingleUseTTL, appLogger),
		Dispatcher: dispatcher,
	}, cfg, appLogger)
	authHandler := handler.NewAuthHandler(accounts, appLogger)

	var rateLimitStore rateli.Store
	if redisClient != nil {
		rateLimitStore = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        cfg.RateLimitWindow,
			Limit:       cfg.RateLimitRequests,
		})
	} else {
		rateLimitStore = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  cfg.RateLimitWindow,
			Limit: cfg.RateLimitRequests,
		})
	}
	rateLimitMiddleware := handler.NewRateLimiter(rateLimitStore)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(appLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	authHandler.RegisterRoutes(router, rateLimitMiddleware)

	// Prometheus is attached after the routes so /metrics is not rate limited.
	p.Use(router)

	// --- Background workers ---
	consumerDone := make(chan struct{})
	if consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := consumer.Start(); err != nil {
				zap.L().Error("Email consumer stopped with error", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	if consumer != nil {
		consumer.Stop()
	}
	<-consumerDone
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			zap.L().Warn("Error closing email publisher", zap.Error(err))
		}
	}
	if inline != nil {
		if err := inline.Wait(shutdownCtx); err != nil {
			zap.L().Warn("Pending emails abandoned on shutdown", zap.Error(err))
		}
	}

	zap.L().Info("Server exiting")
}
