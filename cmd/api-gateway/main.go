package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/prospect-portal-api/api/swagger"
	"github.com/noah-isme/prospect-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/prospect-portal-api/internal/middleware"
	"github.com/noah-isme/prospect-portal-api/internal/repository"
	"github.com/noah-isme/prospect-portal-api/internal/service"
	"github.com/noah-isme/prospect-portal-api/pkg/cache"
	"github.com/noah-isme/prospect-portal-api/pkg/config"
	"github.com/noah-isme/prospect-portal-api/pkg/database"
	"github.com/noah-isme/prospect-portal-api/pkg/jobs"
	"github.com/noah-isme/prospect-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/prospect-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/prospect-portal-api/pkg/middleware/requestid"
)

// @title Prospect Portal API
// @version 1.0.0
// @description Company prospect submission and review.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Session.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, session cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	policy := service.DefaultAccessPolicy()
	feed := service.NewChangeFeed(cfg.Prospects.StreamBuffer)

	userRepo := repository.NewUserRepository(db)
	prospectRepo := repository.NewProspectRepository(db)

	auditQueue := jobs.NewQueue("audit", jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		Logger:     logr,
	})
	auditSvc := service.NewAuditService(userRepo, auditQueue, metricsSvc, logr)
	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	sessionCfg := service.SessionConfig{CacheEnabled: redisClient != nil, CacheTTL: cfg.Session.CacheTTL}
	var sessionSvc *service.SessionService
	if redisClient != nil {
		sessionSvc = service.NewSessionService(userRepo, repository.NewSessionCacheRepository(redisClient), policy, metricsSvc, logr, sessionCfg)
	} else {
		sessionSvc = service.NewSessionService(userRepo, nil, policy, metricsSvc, logr, sessionCfg)
	}

	authSvc := service.NewAuthService(userRepo, sessionSvc, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	prospectSvc := service.NewProspectService(prospectRepo, policy, validate, auditSvc, feed, metricsSvc, logr, service.ProspectConfig{
		StrictReview: cfg.Prospects.StrictReview,
		DefaultLimit: cfg.Prospects.DefaultLimit,
		MaxLimit:     cfg.Prospects.MaxLimit,
	})
	exportSvc := service.NewExportService(prospectSvc, policy, auditSvc, logr)

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.RouteDeps{
		Auth:     handler.NewAuthHandler(authSvc, sessionSvc),
		Prospect: handler.NewProspectHandler(prospectSvc, exportSvc, feed, sessionSvc, metricsSvc, logr),
		Tokens:   authSvc,
		Sessions: sessionSvc,
		Policy:   policy,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "strict_review", cfg.Prospects.StrictReview)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
