package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mehmetcc/libdesk/internal/database"
	"github.com/mehmetcc/libdesk/internal/desk"
	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/server"
	"github.com/mehmetcc/libdesk/internal/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveSkipMigrate bool

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: GroupAdmin,
	Short:   "Run the desk HTTP service",
	Long: `Run the desk HTTP service until SIGINT or SIGTERM.

Pending migrations are applied first unless --skip-migrate is given.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveSkipMigrate, "skip-migrate", false, "Do not apply migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !serveSkipMigrate {
		database.SetMigrationLogger(a.logger)
		if err := database.Migrate(ctx, a.db); err != nil {
			a.logger.Error("failed to migrate database", zap.Error(err))
			return err
		}
	}

	tokens := token.NewTokenService(a.logger, a.cfg.JWTConfig)
	router := server.NewRouter(a.cfg.AppConfig, tokens,
		func(ctx context.Context) error { return a.db.PingContext(ctx) },
		server.Mounts{
			Desk:    desk.NewHandler(a.desk, a.registry, a.loans, a.logger).Routes(),
			Catalog: library.NewHandler(a.api, a.logger).Routes(),
		},
		a.logger,
	)

	a.logger.Info("application started", zap.String("port", a.cfg.AppConfig.Port))
	return server.Run(ctx, server.New(a.cfg.AppConfig, router), a.logger)
}
