package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"

	"github.com/streamvault/video-links/internal/api"
	"github.com/streamvault/video-links/pkg/videolinks"
	"github.com/streamvault/video-links/pkg/videolinks/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	svc, pool, err := cfg.BuildService()
	if err != nil {
		logger.Error("failed to build service", "err", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	presigner, err := cfg.BuildPresigner()
	if err != nil {
		logger.Error("failed to build presigner", "err", err)
		os.Exit(1)
	}

	var tokenAuth *jwtauth.JWTAuth
	if cfg.JWTSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)
	}

	cdnCache := videolinks.NewCachedCDNResolver(svc, cfg.CacheTTL())
	handler := api.NewVideoHandler(svc, cdnCache, presigner, tokenAuth, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/", handler.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("video links server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"cdn_domain", cfg.CDNDomain,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
