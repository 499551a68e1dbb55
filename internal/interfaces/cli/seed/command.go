package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	roleApp "clarion/internal/application/role"
	"clarion/internal/domain/catalog"
	"clarion/internal/domain/role"
	"clarion/internal/infrastructure/config"
	"clarion/internal/infrastructure/database"
	"clarion/internal/infrastructure/repository"
	"clarion/internal/shared/logger"
)

var (
	env   string
	force bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the system roles",
		Long:  `Seed the fixed system roles into the role store. Custom roles are never touched.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing system roles with fresh seeds")

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
	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build role store: %w", err)
	}
	defer cleanup()

	service := roleApp.NewService(catalog.Default(), store, logger.NewLogger().Named("seed"))
	if err := service.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize role collection: %w", err)
	}
	if force {
		if err := service.Seed(cmd.Context(), true); err != nil {
			return fmt.Errorf("failed to reseed system roles: %w", err)
		}
	}

	logger.Info("seed complete", "roles", len(service.List()))
	return nil
}

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
