package cmd

import (
	"fmt"

	"medreminder/internal/config"
	"medreminder/internal/database"
	"medreminder/internal/logger"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg.LogLevel, cfg.LogFormat)

		if cfg.DBDriver == config.DriverMemory {
			log.Info("In-memory storage has no schema to migrate")
			return nil
		}

		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		log.WithField("driver", cfg.DBDriver).Info("Database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
