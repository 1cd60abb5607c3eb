package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/migrate"
)

var (
	migrationsDir string
	useEmbedded   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the notification fixture database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "dir", migrate.DefaultDir, "goose migrations directory")
	root.PersistentFlags().BoolVar(&useEmbedded, "embedded", false, "use the migrations compiled into the binary")

	for _, command := range []string{"up", "down", "status"} {
		root.AddCommand(gooseCmd(command))
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "version <YYYYMMDDHHMMSS>",
			Short: "Migrate up or down to the given version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), "version", func(ctx context.Context, sqlDB *sql.DB, driver string) error {
					return migrate.MigrateToVersion(ctx, sqlDB, driver, migrationsDir, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a new SQL migration file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := migrate.CreateSQLMigration(migrationsDir, args[0])
				if err != nil {
					return fmt.Errorf("create migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check migrations for goose annotations and portable SQL",
			RunE: func(cmd *cobra.Command, _ []string) error {
				validate := func() error { return migrate.ValidateDir(migrationsDir) }
				if useEmbedded {
					validate = migrate.ValidateEmbedded
				}
				if err := validate(); err != nil {
					return fmt.Errorf("migration validation failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
				return nil
			},
		},
	)
	return root
}

func gooseCmd(command string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: "Run goose " + command,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), command, func(ctx context.Context, sqlDB *sql.DB, driver string) error {
				if useEmbedded {
					return migrate.RunEmbedded(ctx, sqlDB, driver, command)
				}
				return migrate.Run(ctx, sqlDB, driver, migrationsDir, command)
			})
		},
	}
}

func withDatabase(ctx context.Context, command string, fn func(context.Context, *sql.DB, string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"cmd":       command,
		"dir":       migrationsDir,
		"embedded":  useEmbedded,
		"db_driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "resource not working: sql database", err)
		return err
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB, dbClient.Driver()); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}
