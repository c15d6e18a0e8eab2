package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/advisory"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/api/router"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/booking"
	appconfig "github.com/nishanthgowda94486-cpu/sensidoc.com/internal/config"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/notify"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/observability/metrics"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/quota"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sensidoc API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	advisoryMetrics := metrics.NewAdvisoryMetrics(prometheus.DefaultRegisterer)

	// Doctor verification lookups go through Redis when configured.
	var doctors booking.DoctorDirectory = booking.NewPostgresDoctorDirectory(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, doctor cache disabled", "error", err)
		} else {
			doctors = booking.NewCachedDoctorDirectory(doctors, rdb, cfg.DoctorCacheTTL, logger)
		}
	}

	mailer := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFrom,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var notifier booking.Notifier
	if mailer != nil {
		notifier = notify.NewService(mailer, notify.NewPostgresContactDirectory(pool), logger)
	}

	scheduler := booking.NewScheduler(booking.NewPostgresRepository(pool), doctors, notifier, bookingMetrics, logger)

	tracker := quota.NewTracker(quota.NewPostgresRepository(pool), cfg.FreeTierMonthlyLimit, logger)

	aiClient, err := advisory.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.AdvisoryTimeout, logger)
	if err != nil {
		logger.Error("failed to create AI client", "error", err)
		os.Exit(1)
	}
	advisorySvc := advisory.NewService(tracker, aiClient, advisory.NewPostgresStore(pool), advisoryMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(scheduler, logger),
		AdvisoryHandler:    advisory.NewHandler(advisorySvc, logger),
		MetricsHandler:     promhttp.Handler(),
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: strings.Split(cfg.CORSAllowedOrigins, ","),
		RateLimitPerSec:    cfg.RateLimitPerSec,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
