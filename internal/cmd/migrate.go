package cmd

import (
	"fmt"

	"github.com/mehmetcc/libdesk/internal/database"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: GroupAdmin,
	Short:   "Apply pending database migrations",
	Args:    cobra.NoArgs,
	RunE:    runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	database.SetMigrationLogger(a.logger)
	if err := database.Migrate(cmd.Context(), a.db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	v, err := database.Version(cmd.Context(), a.db)
	if err != nil {
		return err
	}
	fmt.Printf("%s schema at version %d\n", style.SuccessPrefix, v)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := database.Version(cmd.Context(), a.db)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d\n", style.Bold.Render("Schema version:"), v)
	return nil
}
