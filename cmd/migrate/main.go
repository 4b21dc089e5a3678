package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sihur-medellin/sihur/internal/config"
	"github.com/sihur-medellin/sihur/internal/database"
	"github.com/sihur-medellin/sihur/internal/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "sihur-migrate",
	Short:         "Create or update the SIHUR schema and seed reference data",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Connect to the database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	fmt.Printf("✅ Connected to %s\n", cfg.DBDriver)

	admin := database.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}
	fmt.Println("🚀 Running migration...")
	if err := database.Migrate(cmd.Context(), db, admin, logger.Named("migrate")); err != nil {
		return err
	}
	fmt.Println("✅ Migration finished")

	counts, err := database.TableCounts(cmd.Context(), db)
	if err != nil {
		return err
	}
	fmt.Println("\n📋 Tables:")
	for _, c := range counts {
		fmt.Printf("  ✓ %-34s %d\n", c.Table, c.Rows)
	}
	return nil
}
