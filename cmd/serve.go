package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"medreminder/internal/app"
	"medreminder/internal/config"
	"medreminder/internal/logger"

	"github.com/spf13/cobra"
)

var consumeEvents bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg.LogLevel, cfg.LogFormat)

		srv, err := app.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		if consumeEvents {
			if err := srv.ConsumeEvents(); err != nil {
				log.WithError(err).Error("Failed to start RabbitMQ consumer")
			}
		}

		// Graceful shutdown handling
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen()
		}()

		select {
		case err := <-errCh:
			_ = srv.Shutdown()
			return fmt.Errorf("server error: %w", err)
		case <-quit:
		}

		log.Info("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.WithError(err).Error("Error during Fiber shutdown")
		}
		log.Info("Server gracefully stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&consumeEvents, "consume-events", false, "log reminder events from RabbitMQ")
}
