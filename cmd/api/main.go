package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modelhubweb/config"
	"modelhubweb/controllers"
	"modelhubweb/dbhelper"
	"modelhubweb/services"
	"modelhubweb/session"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetLevel(log.DebugLevel)
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          services.GetEnv("RELEASE", "modelhubweb@1.0.0"),
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := services.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout)
	modelService, err := services.NewCachedModelService(&services.ModelService{API: api}, cfg.ModelsCacheTTL)
	if err != nil {
		log.Fatalf("Failed to initialize models cache: %v", err)
	}

	deps := &session.Dependencies{
		API:              api,
		Models:           modelService,
		ChatPollInterval: cfg.ChatPollInterval,
	}

	var storage services.StorageProvider
	if cfg.StorageEnabled() {
		awsService := &services.AWSService{BucketName: cfg.R2BucketName, PublicBaseURL: cfg.R2PublicURL}
		err := awsService.InitPresignClient(ctx, services.R2Credentials{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		storage = awsService
		deps.Storage = awsService
	} else {
		log.Warn("R2 credentials are not set, uploads are disabled")
	}

	if cfg.LedgerEnabled() {
		db, err := dbhelper.SetupDB(cfg.DSN())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		deps.Incidents = &dbhelper.IncidentLedger{DB: db}
	} else {
		log.Warn("DB_HOST is not set, payment incidents are only logged")
	}

	hub := session.NewHub(deps)
	defer hub.CloseAll()
	go hub.RunJanitor(ctx, time.Minute, cfg.SessionIdleTTL)

	e := controllers.SetupServer(cfg.JWTSecret, hub, storage, &services.StatsService{API: api})
	e.Debug = !cfg.IsProduction()
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("starting server")
	if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
