// Package cmd is the libdesk command line: the HTTP service plus the desk
// operations an operator can run from a terminal.
package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/mehmetcc/libdesk/internal/config"
	"github.com/mehmetcc/libdesk/internal/database"
	"github.com/mehmetcc/libdesk/internal/desk"
	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/loan"
	"github.com/mehmetcc/libdesk/internal/logger"
	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "libdesk"

const (
	GroupDesk  = "desk"
	GroupAdmin = "admin"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "libdesk",
	Short: "Library front desk: user registry and book loans",
	Long: `libdesk registers library users, generates their usernames and
checks books in and out against the library management API.

Configuration comes from the environment, optionally seeded from a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupDesk, Title: "Desk Commands:"},
		&cobra.Group{ID: GroupAdmin, Title: "Admin Commands:"},
	)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("requires a subcommand")
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}

// app is the wiring shared by every command that touches the registry or
// the library API.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sql.DB
	registry person.Registry
	loans    loan.Repo
	api      library.API
	desk     desk.Service
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	// bootstrap logger for config loading; replaced once the level is known
	boot, err := logger.New("info", "console", serviceName)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadConfig(boot, envFile)
	if err != nil {
		return nil, nil, err
	}
	l, err := logger.New(cfg.LogConfig.Level, cfg.LogConfig.Format, serviceName)
	if err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, l, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.DbConfig)
	if err != nil {
		l.Error("failed to open database", zap.Error(err))
		return nil, err
	}

	registry := person.NewRegistry(db, l)
	loans := loan.NewRepo(db, l)
	api := library.NewClient(cfg.LibraryAPIConfig, l)

	return &app{
		cfg:      cfg,
		logger:   l,
		db:       db,
		registry: registry,
		loans:    loans,
		api:      api,
		desk:     desk.NewService(registry, api, loans, l),
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}
