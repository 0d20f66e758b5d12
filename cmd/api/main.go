package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"acm-portal/internal/calendar"
	"acm-portal/internal/config"
	"acm-portal/internal/db"
	"acm-portal/internal/email"
	apihttp "acm-portal/internal/http"
	"acm-portal/internal/repository"
	"acm-portal/internal/service"
	"acm-portal/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	userRepo, closeStore := openUserRepository(ctx, cfg, logger)
	defer closeStore()

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:         cfg.SMTPHost,
			Port:         cfg.SMTPPort,
			Username:     cfg.SMTPUser,
			Password:     cfg.SMTPPass,
			From:         cfg.SMTPFrom,
			FromName:     cfg.SMTPFromName,
			ContactInbox: cfg.ContactInbox,
			APIBaseURL:   cfg.APIBaseURL,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		authLimiter    = service.NewMemoryRequestLimiter(10*time.Minute, 3)
		contactLimiter = service.NewMemoryRequestLimiter(time.Hour, 5)
		eventCache     = service.NewMemoryEventCache()
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory limiters", zap.Error(err))
		} else {
			authLimiter = service.NewRedisRequestLimiter(redisClient, "auth", 10*time.Minute, 3)
			contactLimiter = service.NewRedisRequestLimiter(redisClient, "contact", time.Hour, 5)
			eventCache = service.NewRedisEventCache(redisClient)
		}
		cancel()
	}

	resumes := storage.NewDisabledStore()
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3ResumeStore(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			MaxBytes:        cfg.ResumeMaxMB << 20,
		})
		if err != nil {
			logger.Warn("resume storage init failed", zap.Error(err))
		} else {
			resumes = store
		}
	}

	calClient := calendar.NewDisabledClient()
	if cfg.CalendarCredentialsFile != "" {
		client, err := calendar.NewGoogleClient(ctx, cfg.CalendarCredentialsFile, cfg.CalendarID)
		if err != nil {
			logger.Warn("calendar init failed", zap.Error(err))
		} else {
			calClient = client
		}
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	resetTTL := time.Duration(cfg.ResetTokenTTLMinutes) * time.Minute
	userSvc := service.NewUserService(logger, userRepo, service.NewPasswordHasher(service.SaveHashCost), emailSender, authLimiter, resetTTL)
	eventSvc := service.NewEventService(logger, calClient, eventCache, time.Duration(cfg.EventsCacheSeconds)*time.Second)
	contactSvc := service.NewContactService(logger, emailSender, contactLimiter)

	if cfg.ExposeResetToken {
		logger.Warn("EXPOSE_RESET_TOKEN is enabled; reset tokens are returned by /forgot")
	}

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterConfig{
			CORSOrigins:    cfg.CORSOrigins,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			MaxBodyBytes:   cfg.ResumeMaxMB << 20,
		},
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc, resumes, apihttp.UserHandlerConfig{
			ClientURL:        cfg.ClientURL,
			ExposeResetToken: cfg.ExposeResetToken,
			MaxResumeBytes:   cfg.ResumeMaxMB << 20,
		}),
		apihttp.NewEventHandler(logger, eventSvc),
		apihttp.NewContactHandler(logger, contactSvc),
		apihttp.NewHealthHandler(logger, userRepo),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openUserRepository conecta el store elegido por STORE_DRIVER y devuelve su cierre.
func openUserRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, func()) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := db.NewMongoClient(ctx, cfg)
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		repo, err := repository.NewMongoUserRepository(ctx, client, cfg.MongoDatabase)
		if err != nil {
			logger.Fatal("mongo indexes", zap.Error(err))
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }
	default:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		return repository.NewPgUserRepository(pool), pool.Close
	}
}
