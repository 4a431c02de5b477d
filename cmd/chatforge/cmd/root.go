package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chatforge/chatforge/internal/config"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "chatforge",
	Short: "Conversational assistant engine",
	Long: `ChatForge runs the conversational assistant engine: session
management, personality-templated replies, sentiment tracking, and
analytics, served over HTTP and a websocket relay.

Run "chatforge serve" to start the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// newLogger builds the process logger honoring the debug flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "chatforge",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadSettings reads the settings profile. A missing file yields defaults; a
// damaged file yields defaults with a warning, never a failed start.
func loadSettings(logger *log.Logger) config.Settings {
	settings, err := config.Load(configPath)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", "path", configPath, "err", err)
	}
	return settings
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
