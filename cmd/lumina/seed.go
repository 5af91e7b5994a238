package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lumina/internal/config"
	internaldb "lumina/internal/db"
	"lumina/internal/db/repository"
	"lumina/internal/declarative"
	"lumina/internal/service/security"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Apply a declarative permission seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context(), args[0])
	},
}

func runSeed(ctx context.Context, path string) error {
	_ = config.LoadDotEnv(envFile)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	seed, err := declarative.LoadFile(path)
	if err != nil {
		return err
	}

	writeDB, err := internaldb.OpenSQLite(cfg.PermDBPath, "write", 1)
	if err != nil {
		return fmt.Errorf("open permission store: %w", err)
	}
	defer writeDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("migrate permission store: %w", err)
	}

	admin := security.NewAdminService(
		repository.NewUserRepo(writeDB),
		repository.NewProjectRepo(writeDB),
		repository.NewRoleRepo(writeDB),
		repository.NewGrantRepo(writeDB),
		repository.NewPermissionRepo(writeDB),
		cfg.AllowedEmailDomain,
		logger,
	)

	return declarative.NewApplier(admin, logger).Apply(ctx, seed)
}
