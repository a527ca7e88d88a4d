// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/littlesmartgenius/sitekeeper/internal/api"
	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/github"
	"github.com/littlesmartgenius/sitekeeper/internal/health"
	"github.com/littlesmartgenius/sitekeeper/internal/mailer"
	"github.com/littlesmartgenius/sitekeeper/internal/mcpserver"
	"github.com/littlesmartgenius/sitekeeper/internal/seo"
	"github.com/littlesmartgenius/sitekeeper/internal/snapshot"
	"github.com/littlesmartgenius/sitekeeper/internal/workflow"
)

// services bundles the domain services built from one configuration.
type services struct {
	content *content.Service
	health  *health.Engine
	seo     *seo.Scanner
	snaps   *snapshot.Manager
	flows   *workflow.Trigger
	mail    *mailer.Service
}

func buildServices(cfg *Config) (*services, error) {
	store, err := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Token, cfg.GitHub.Repo, cfg.GitHub.Branch)
	if err != nil {
		return nil, fmt.Errorf("init content store: %w", err)
	}

	catalog, err := mailer.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load freebie catalog: %w", err)
	}

	var list *mailer.MailerLite
	if cfg.Mail.MailerLiteKey != "" {
		list = mailer.NewMailerLite("", cfg.Mail.MailerLiteKey, cfg.Mail.MailerLiteGroup)
	}
	var sender *mailer.Resend
	if cfg.Mail.ResendKey != "" {
		sender = mailer.NewResend("", cfg.Mail.ResendKey)
	}

	return &services{
		content: content.NewService(store, cfg.Site.URL, cfg.Webhook.URL),
		health:  health.NewEngine(store),
		seo:     seo.NewScanner(store, cfg.Site.URL, cfg.Site.Name),
		snaps:   snapshot.NewManager(store),
		flows:   workflow.NewTrigger(store, cfg.Workflow.File, cfg.Workflow.ScanFile),
		mail:    mailer.NewService(list, sender, cfg.Mail.AdminEmail, cfg.Mail.FromDomain, cfg.Site.URL, cfg.Site.Name, catalog),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("repo", cfg.GitHub.Repo),
		slog.String("branch", cfg.GitHub.Branch),
		slog.String("site_url", cfg.Site.URL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svcs, err := buildServices(cfg)
	if err != nil {
		return err
	}

	h := api.NewHandler(svcs.content, svcs.health, svcs.seo, svcs.snaps, svcs.flows, svcs.mail)
	r := api.NewRouter(h, cfg.Admin.Secret)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options. Logs go to
// stderr so stdout stays clean for the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svcs, err := buildServices(app.config)
	if err != nil {
		return err
	}

	srv := mcpserver.New(svcs.content, svcs.health, svcs.seo, svcs.snaps, svcs.flows)
	logger.Info("Starting MCP stdio server")
	return srv.ServeStdio()
}
