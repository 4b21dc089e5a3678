package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/config"
	"github.com/sihur-medellin/sihur/internal/database"
	"github.com/sihur-medellin/sihur/internal/logging"
	"github.com/sihur-medellin/sihur/internal/server"
)

var (
	envFile string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:           "sihur-server",
	Short:         "Serve the SIHUR case-management API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// 1. Load configuration
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.JWTSecretGenerated {
		logger.Warn("JWT_SECRET not set; using a random secret for this process")
	}

	// 2. Connect and migrate; the server refuses to start on failure
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin := database.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}
	if err := database.Migrate(ctx, db, admin, logger.Named("migrate")); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 3. Build and run the HTTP application
	srv, err := server.New(cfg, db, logger, server.Options{})
	if err != nil {
		return err
	}
	logger.Info("starting sihur",
		zap.String("env", cfg.Env),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("recaptcha", cfg.RecaptchaEnabled))

	if err := srv.Run(ctx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped")
	return nil
}
