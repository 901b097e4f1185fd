package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcnelson/yatube/internal/api"
	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	secret, err := cfg.Session.SecretBytes()
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionManager(secret, cfg.Session.Duration, cfg.Session.Secure)
	if err != nil {
		return err
	}
	state, err := auth.NewStateStore(secret, cfg.Session.Secure)
	if err != nil {
		return err
	}

	deps := web.Dependencies{
		Listing:  service.NewListingService(store, cfg.Blog.PageSize),
		Posts:    service.NewPostService(store, logger),
		Groups:   service.NewGroupService(store, logger),
		Users:    service.NewUserService(store, logger),
		Sessions: sessions,
		State:    state,
		SiteName: cfg.Blog.SiteName,
		Logger:   logger,
	}

	if cfg.OIDC.Enabled {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		provider, err := auth.NewOIDCProvider(ctx,
			cfg.OIDC.IssuerURL,
			cfg.OIDC.ClientID,
			cfg.OIDC.ClientSecret,
			cfg.OIDC.RedirectURL,
			cfg.OIDC.GetScopes(),
			cfg.OIDC.GetAllowedDomains(),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to initialize OIDC provider: %w", err)
		}
		deps.OIDC = provider
		logger.Info("OIDC login enabled", zap.String("issuer", cfg.OIDC.IssuerURL))
	}

	router := api.NewRouter(api.Dependencies{
		Store:        store,
		BootstrapKey: cfg.Admin.BootstrapAPIKey,
		Logger:       logger,
		Web:          deps,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting yatube",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("page_size", cfg.Blog.PageSize),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
