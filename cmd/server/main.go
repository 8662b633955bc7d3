package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chatup/chatup-server/internal/app"
	"github.com/chatup/chatup-server/internal/config"
	"github.com/chatup/chatup-server/internal/log"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
		prettyLogs bool
	)

	cmd := &cobra.Command{
		Use:   "chatup-server",
		Short: "Chat server with live presence and push notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, overrides, prettyLogs)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
	cmd.Flags().StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&overrides.DatabasePath, "db", "", "path to the SQLite database file")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	cmd.Flags().DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	cmd.Flags().BoolVar(&prettyLogs, "pretty", false, "human-readable log output")

	return cmd
}

func runServer(configPath string, overrides config.Config, prettyLogs bool) error {
	bootLogger := log.New("info", prettyLogs)

	cfg, resolvedPath, err := config.Load(bootLogger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, prettyLogs)
	logger.Info().Str("config", resolvedPath).Str("addr", cfg.Addr).Msg("starting chatup server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
