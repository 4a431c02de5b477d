package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatforge/chatforge/internal/api"
	"github.com/chatforge/chatforge/internal/app"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		settings := loadSettings(logger)

		a := app.New(settings, logger)
		defer a.Shutdown()
		if configPath != "" {
			a.PersistTo(configPath)
		}

		server := api.NewServer(a, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(servePort); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		logger.Info("serving", "port", servePort, "active_session", a.Store.ActiveID())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 47300, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
