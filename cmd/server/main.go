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

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/coastal7-sdlc/user-story-agent/common/id"
	"github.com/coastal7-sdlc/user-story-agent/common/llm"
	"github.com/coastal7-sdlc/user-story-agent/common/logger"
	"github.com/coastal7-sdlc/user-story-agent/common/otel"
	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/internal/http/middleware"
	httprouter "github.com/coastal7-sdlc/user-story-agent/internal/http/router"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
	"github.com/coastal7-sdlc/user-story-agent/internal/store"
)

const version = "1.0.0"

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "user story agent starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	// Each dependency starts independently; a failure leaves only that
	// capability unavailable.
	llmClient := setupLLM(ctx, cfg.LLM)
	batches := setupStore(ctx, cfg.Store)
	if batches != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := batches.Close(closeCtx); err != nil {
				slog.ErrorContext(closeCtx, "store close error", "error", err)
			}
		}()
	}

	services := service.NewServices(llmClient, batches, service.GenerationConfig{
		MaxTokens:        cfg.LLM.MaxTokens,
		Temperature:      cfg.LLM.Temperature,
		MaxRetries:       cfg.LLM.MaxRetries,
		StructuredOutput: cfg.LLM.StructuredOutput,
	}).
		WithTracker(issue_tracker.TrackerJira, setupJira(ctx, cfg.Jira), cfg.Jira.ProjectKey).
		WithTracker(issue_tracker.TrackerGitLab, setupGitLab(ctx, cfg.GitLab), cfg.GitLab.Project)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupLLM(ctx context.Context, cfg config.LLMConfig) llm.Client {
	if !cfg.Enabled() {
		slog.WarnContext(ctx, "completion provider not configured, generation disabled", "provider", cfg.Provider)
		return nil
	}

	client, err := llm.New(llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
		Headers: map[string]string{
			"HTTP-Referer": cfg.HTTPReferer,
			"X-Title":      cfg.AppTitle,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize completion provider", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "completion provider initialized", "provider", client.Provider(), "model", client.Model())
	return client
}

func setupStore(ctx context.Context, cfg config.StoreConfig) store.BatchStore {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	batches, err := store.Open(openCtx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize store, persistence disabled", "error", err, "backend", cfg.Backend)
		return nil
	}

	slog.InfoContext(ctx, "store connected", "backend", batches.Backend())
	return batches
}

func setupJira(ctx context.Context, cfg config.JiraConfig) issue_tracker.IssueTracker {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "jira not configured")
		return nil
	}

	tracker, err := issue_tracker.NewJiraTracker(issue_tracker.JiraConfig{
		URL:              cfg.URL,
		Username:         cfg.Username,
		APIToken:         cfg.APIToken,
		DefaultIssueType: cfg.IssueType,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize jira", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "jira initialized", "url", cfg.URL)
	return tracker
}

func setupGitLab(ctx context.Context, cfg config.GitLabConfig) issue_tracker.IssueTracker {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "gitlab not configured")
		return nil
	}

	tracker, err := issue_tracker.NewGitLabTracker(issue_tracker.GitLabConfig{
		URL:   cfg.URL,
		Token: cfg.Token,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize gitlab", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "gitlab initialized", "url", cfg.URL)
	return tracker
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()
	// Keeps URL-encoded "group%2Fproject" GitLab keys in one path segment.
	router.UseRawPath = true

	// Order matters: OTel creates span → request id → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		AppName: cfg.AppName,
		Version: version,
	})

	return router
}

const banner = `
 _   _ ___  ___ ___   ___ _____ ___  _____   __    _   ___ ___ _  _ _____
| | | / __|| __| _ \ / __|_   _/ _ \| _ \ \ / /   /_\ / __| __| \| |_   _|
| |_| \__ \| _||   / \__ \ | || (_) |   /\ V /   / _ \ (_ | _|| .' | | |
 \___/|___/|___|_|_\ |___/ |_| \___/|_|_\ |_|   /_/ \_\___|___|_|\_| |_|
`
