// Package main provides the entry point for the bet slip service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/api"
	"github.com/yourusername/betslip/internal/config"
	"github.com/yourusername/betslip/internal/database"
	"github.com/yourusername/betslip/internal/feed"
	"github.com/yourusername/betslip/internal/health"
	"github.com/yourusername/betslip/internal/logger"
	"github.com/yourusername/betslip/internal/metrics"
	"github.com/yourusername/betslip/internal/models"
	"github.com/yourusername/betslip/internal/repository"
	"github.com/yourusername/betslip/internal/scheduler"
	"github.com/yourusername/betslip/internal/session"
	"github.com/yourusername/betslip/internal/wagering"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Bet slip service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the receipt archive when enabled
	var receipts repository.ReceiptRepository
	var db *database.DB
	if cfg.Features.ReceiptArchiveEnabled {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to initialize receipt archive")
		}
		defer db.Close()

		receipts = repository.NewPostgresReceiptRepository(db)
		appLog.Info("Receipt archive enabled")
	}

	// Match feed: HTTP client, feed client, match book
	httpCfg := feed.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedRequestTimeout()
	httpCfg.RateLimit = cfg.MatchFeed.RateLimit
	httpClient := feed.NewRateLimitedHTTPClient(httpCfg, appLog)
	defer httpClient.Close()

	feedClient := feed.NewClient(cfg.MatchFeed.APIURL, httpClient, cfg.FeedCacheTTL(), appLog)
	book := feed.NewMatchBook(appLog)

	if err := feedClient.RefreshBook(ctx, book); err != nil {
		appLog.WithError(err).Fatal("Failed to load initial match list")
	}
	appLog.WithField("matches", book.Len()).Info("Initial match list loaded")

	// Wagering collaborator
	wageringHTTPCfg := feed.DefaultHTTPClientConfig()
	wageringHTTPCfg.Timeout = cfg.WageringRequestTimeout()
	wageringHTTP := feed.NewRateLimitedHTTPClient(wageringHTTPCfg, appLog)
	defer wageringHTTP.Close()

	wageringClient := wagering.NewClient(cfg.Wagering.APIURL, cfg.Wagering.APIKey, wageringHTTP, appLog)

	// Session manager
	audit := logger.NewAuditLogger(appLog)
	sessions := session.NewManager(book, wageringClient, receipts, audit, appLog)

	// Live update stream: every decoded delta goes through the book's single
	// ingestion path
	var stream *feed.StreamClient
	if cfg.Features.LiveUpdatesEnabled {
		stream = feed.NewStreamClient(cfg.MatchFeed.StreamURL, appLog)
		stream.AddHandler(func(update models.LiveUpdate) {
			book.Apply(update)
		})
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Live update stream stopped")
			}
		}()
	} else {
		appLog.Info("Live updates disabled; match book refreshes by polling only")
	}

	// Periodic match list refresh
	var refreshScheduler *scheduler.Scheduler
	if cfg.Features.AutoRefreshEnabled {
		refreshScheduler = scheduler.NewScheduler(feedClient, book, appLog)
		if err := refreshScheduler.ScheduleBookRefresh(cfg.MatchFeed.RefreshIntervalSeconds); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule match book refresh")
		}
		if err := refreshScheduler.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	}

	// Health probes
	healthAddr := ""
	if port := os.Getenv("HEALTH_PORT"); port != "" {
		healthAddr = ":" + port
	}
	healthServer := health.NewServer(cfg.App.Name, Version, GitCommit, healthAddr, appLog)
	healthServer.AddCheck("match_feed", feedClient)
	if db != nil {
		healthServer.AddCheck("database", db)
	}
	healthServer.Start(ctx)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Slip API
	apiServer := api.NewServer(cfg.Server.Port, sessions, book, appLog)
	apiServer.Start(ctx)

	appLog.WithFields(logrus.Fields{
		"live_updates":    cfg.Features.LiveUpdatesEnabled,
		"auto_refresh":    cfg.Features.AutoRefreshEnabled,
		"receipt_archive": cfg.Features.ReceiptArchiveEnabled,
	}).Info("Bet slip service running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	cancel()

	if refreshScheduler != nil {
		if err := refreshScheduler.Stop(); err != nil {
			appLog.WithError(err).Error("Error stopping scheduler")
		}
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			appLog.WithError(err).Error("Error closing stream")
		}
	}

	// Give components time to cleanup
	time.Sleep(1 * time.Second)

	appLog.Info("Bet slip service shut down successfully")
}
