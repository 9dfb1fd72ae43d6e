package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/luwei-tw/pmline/pkg/pmline/assistant"
	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
	"github.com/luwei-tw/pmline/pkg/pmline/ollama"
	"github.com/luwei-tw/pmline/pkg/pmline/webhook"
)

// newServeCmd creates the `pmline serve` command that starts the webhook daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LINE webhook daemon",
		Long: `Start pmline as a daemon: load the knowledge base, watch it for
changes, and serve the LINE webhook endpoint.

Examples:
  pmline serve
  pmline serve --config ./config.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	logger := newLogger(cmd, cfg)

	// ── Knowledge base ──
	store := knowledge.NewStore(cfg.Knowledge.Path, logger)
	store.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := store.Watch(ctx); err != nil {
			logger.Warn("knowledge watch unavailable, edits need a restart or cron refresh", "error", err)
		}
	}()

	// Cron backstop for setups where file events are unreliable
	// (network mounts, some container volumes).
	var scheduler *cron.Cron
	if cfg.Knowledge.RefreshCron != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Knowledge.RefreshCron, func() { store.Load() }); err != nil {
			return fmt.Errorf("invalid refresh cron %q: %w", cfg.Knowledge.RefreshCron, err)
		}
		scheduler.Start()
		logger.Info("knowledge refresh scheduled", "cron", cfg.Knowledge.RefreshCron)
	}

	// ── Assistant ──
	llm := ollama.New(cfg.API.BaseURL, cfg.Model, logger)
	asst := assistant.New(cfg, llm, store, logger)

	if cfg.UpdateLog.Path != "" {
		updateLog, err := assistant.OpenUpdateLog(cfg.UpdateLog.Path, logger)
		if err != nil {
			return fmt.Errorf("opening update log: %w", err)
		}
		defer updateLog.Close()
		asst.SetUpdateLog(updateLog)
	}

	// ── Webhook server ──
	server := webhook.New(asst, webhook.Config{
		Address:       cfg.Server.Address,
		ChannelSecret: cfg.Line.ChannelSecret,
		ChannelToken:  cfg.Line.ChannelToken,
		ReplyURL:      cfg.Line.ReplyURL,
	}, logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	// ── Wait for shutdown ──
	logger.Info("pmline running. Press Ctrl+C to stop.",
		"name", cfg.Name,
		"model", cfg.Model,
		"knowledge", cfg.Knowledge.Path,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if scheduler != nil {
		scheduler.Stop()
	}
	cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	} else {
		logger.Info("shutdown complete")
	}

	return nil
}

// resolveConfig loads config from the --config flag, an auto-discovered
// file, or defaults.
func resolveConfig(cmd *cobra.Command) (*assistant.Config, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	if configPath != "" {
		cfg, err := assistant.LoadConfigFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	if found := assistant.FindConfigFile(); found != "" {
		cfg, err := assistant.LoadConfigFromFile(found)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", found, err)
		}
		slog.Info("config loaded", "path", found)
		return cfg, nil
	}

	// No config file: defaults plus environment overrides are enough for
	// local development against a default Ollama.
	return assistant.LoadConfig()
}

// newLogger builds the process logger from config and the --verbose flag.
func newLogger(cmd *cobra.Command, cfg *assistant.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}
