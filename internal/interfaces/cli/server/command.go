package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	matrixApp "clarion/internal/application/matrix"
	roleApp "clarion/internal/application/role"
	"clarion/internal/domain/catalog"
	"clarion/internal/domain/role"
	"clarion/internal/infrastructure/config"
	"clarion/internal/infrastructure/database"
	"clarion/internal/infrastructure/repository"
	httpRouter "clarion/internal/interfaces/http"
	"clarion/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Clarion HTTP server with the configured role store.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"store_driver", cfg.Store.Driver)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build role store: %w", err)
	}
	defer cleanup()

	cat := catalog.Default()
	log := logger.NewLogger()

	roleService := roleApp.NewService(cat, store, log.Named("roles"))
	if err := roleService.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize role collection: %w", err)
	}
	matrixService := matrixApp.NewService(cat)

	router := httpRouter.NewRouter(&cfg.Server, cat, roleService, matrixService, log)

	srv := &http.Server{
		Addr:    cfg.Server.GetAddr(),
		Handler: router.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// buildStore constructs the configured role store and a cleanup func.
func buildStore(cfg *config.Config) (role.Store, func(), error) {
	switch cfg.Store.Driver {
	case "file":
		return repository.NewRoleFileStore(cfg.Store.Path), func() {}, nil
	case "sqlite", "mysql":
		if err := database.Init(&cfg.Store); err != nil {
			return nil, nil, err
		}
		store, err := repository.NewRoleDocumentStore(database.Get())
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return store, func() { database.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
