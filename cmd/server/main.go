package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/securecomm-server/internal/app"
	"github.com/vovakirdan/securecomm-server/internal/config"
	applog "github.com/vovakirdan/securecomm-server/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "securecomm-server",
	Short: "Ephemeral room chat and call signaling server",
	Long: `securecomm-server relays chat messages, presence and call signaling between
participants of short-lived, code-addressed rooms over WebSocket. Rooms live in
memory and disappear when the last participant leaves.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config.yaml (created with defaults when missing)")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func serve(ctx context.Context) error {
	bootLogger := applog.New("info", "console")

	cfg, path, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		Addr: flagAddr,
		Log:  config.LogConfig{Level: flagLogLevel},
	})

	logger := applog.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting securecomm server")

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
