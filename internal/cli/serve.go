package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/config"
	"github.com/vilaca/repo-issues/internal/dashboard"
	"github.com/vilaca/repo-issues/internal/service"
)

// ServeCmd returns the "serve" command running the web front-end.
func ServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the issues viewer over HTTP",
		Long: `Serve the issues viewer over HTTP.

Viewers without an API key are asked for one. When a GitHub token is
configured, or a key was saved with "repo-issues key save", it is used for
viewers that did not submit their own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Int("port", 0, fmt.Sprintf("port to listen on (default %d, or $PORT)", config.DefaultPort))
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := dashboard.NewStdLogger()

	handler, cleanup, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Starting repo-issues on http://localhost%s", addr)
	log.Printf("GitHub API: %s (cache: %ds)", cfg.GitHubURL, cfg.CacheDurationSeconds)
	if !cfg.HasGitHubToken() {
		log.Printf("No GITHUB_TOKEN configured; viewers without a saved key will be asked for one")
	}

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildServer wires up all dependencies and returns the configured HTTP handler.
// This is the composition root where all dependencies are created and injected.
// cleanup stops the background workers.
func buildServer(cfg *config.Config, logger *dashboard.StdLogger) (http.Handler, func(), error) {
	keyStore := service.NewKeyStore(cfg.KeyFile, logger)
	defaultKey, err := resolveKey("", cfg, keyStore)
	if err != nil {
		return nil, nil, err
	}

	// Wrap with caching layer
	cacheDuration := time.Duration(cfg.CacheDurationSeconds) * time.Second
	client := api.NewCachingClient(newGitHubClient(cfg), cacheDuration, logger)

	issueService := service.NewIssueService(client, defaultKey, logger)
	maxIdle := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	sweeper := service.NewSessionSweeper(issueService, maxIdle/4, maxIdle, logger)
	sweeper.Start()

	handler := dashboard.NewHandler(dashboard.HandlerConfig{
		Renderer:     dashboard.NewHTMLRenderer(cfg.MaxTitleLength),
		Logger:       logger,
		IssueService: issueService,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	cleanup := func() {
		sweeper.Stop()
		client.Close()
	}
	return mux, cleanup, nil
}
