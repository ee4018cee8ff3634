package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	internalhandler "github.com/noah-isme/uni-timetable-api/internal/handler"
	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/optimizer/telemetry"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/internal/snapshot"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/jobs"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	loader := snapshot.NewPostgresLoader(db)
	snapCache := snapshot.NewCache(connectRedisOrNil(cfg, logr), loader, cfg.Snapshot.CacheTTL, logr)

	recorder := telemetry.NewRecorder()

	defaultRunCfg := optimizer.RunConfig{
		PopulationSize:   cfg.Optimizer.PopulationSize,
		Generations:      cfg.Optimizer.Generations,
		Elitism:          cfg.Optimizer.EliteCount,
		EarlyStopFitness: cfg.Optimizer.EarlyStopFitness,
		MutationBase:     cfg.Optimizer.MutationBaseRate,
		MutationGrowth:   cfg.Optimizer.MutationRampRate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSvc := service.NewRunService(ctx, snapCache, service.NewRunStore(), recorder, defaultRunCfg, cfg.Optimizer.DefaultRunTimeout, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.QueueDepth,
		MaxRetries: cfg.Jobs.MaxRetries,
	}, logr)
	defer runSvc.Stop()

	runHandler := internalhandler.NewRunHandler(runSvc)
	metricsHandler := internalhandler.NewMetricsHandler(recorder)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", metricsHandler.Health)
	r.GET("/readyz", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	runs := api.Group("/runs")
	runs.POST("", runHandler.Submit)
	runs.GET("/:id", runHandler.Status)
	runs.GET("/:id/sections/:sectionId", runHandler.ScheduleCSV)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// connectRedisOrNil returns a Redis client when snapshot caching is enabled,
// or nil when it is not; snapshot.Cache treats a nil client as "caching
// disabled" and falls through to the Postgres loader on every call.
func connectRedisOrNil(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Snapshot.CacheEnabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, snapshot caching disabled", "error", err)
		return nil
	}
	return client
}
