package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillconnect/internal/api"
	"skillconnect/internal/auth"
	"skillconnect/internal/config"
	"skillconnect/internal/logger"
	"skillconnect/internal/redis"
	"skillconnect/internal/service"
	"skillconnect/internal/store"
	"skillconnect/internal/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logOpts := logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if cfg.FluentBit.Enabled {
		fl, err := logger.NewFluentClient(cfg.FluentBit.Host, cfg.FluentBit.Port, cfg.FluentBit.Tag)
		if err != nil {
			slog.Warn("Fluent Bit unavailable, logging to console only", "error", err)
		} else {
			defer fl.Close()
			logOpts.Fluent = fl
			logOpts.FluentTag = "server"
			logOpts.FluentLevel = cfg.FluentBit.Level
		}
	}
	log := logger.New(logOpts)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authn, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	mongoClient, err := store.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		cancel()
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.MongoDB)
	err = store.EnsureIndexes(connectCtx, db)
	cancel()
	if err != nil {
		return err
	}

	// Without REDIS_URL the hub runs single-instance. relay and cluster have
	// to stay nil interfaces, not a nil *redis.Client.
	var relay ws.Relay
	var cluster api.ClusterPresence
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		relay = redisClient
		cluster = redisClient
	} else {
		slog.Info("REDIS_URL not set, running without cross-instance relay")
	}

	hub := ws.NewHub(relay)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	if redisClient != nil {
		go redis.SubscribeToEvents(ctx, redisClient, hub)
	}

	users := store.NewUserStore(db)
	notifier := service.NewNotificationService(store.NewNotificationStore(db), hub)

	router := api.NewRouter(api.Deps{
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           authn.Middleware,
		WS:             ws.NewHandler(hub, authn, cfg.AllowedOrigins),
		Presence:       hub,
		Cluster:        cluster,
		Notifications:  notifier,
		Messages:       service.NewMessageService(store.NewMessageStore(db), users, notifier, hub),
		Jobs:           service.NewJobService(store.NewJobStore(db), users, notifier),
		Social:         service.NewSocialService(users),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("SkillConnect server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	// Shutdown does not wait for hijacked websocket connections; the hub
	// closes those once ctx is done.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	select {
	case <-hubDone:
	case <-shutdownCtx.Done():
		slog.Warn("Hub did not stop before shutdown timeout")
	}

	slog.Info("Server stopped")
	return nil
}
