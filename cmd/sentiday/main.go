package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/sentiday/internal/config"
	"github.com/rewired-gh/sentiday/internal/logger"
	"github.com/rewired-gh/sentiday/internal/metrics"
	"github.com/rewired-gh/sentiday/internal/pipeline"
	"github.com/rewired-gh/sentiday/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	stage      = flag.String("stage", pipeline.TargetAll, "Stage to run: aggregate, score, score-raw, series or all")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()
	logger.Info("Configuration loaded from %s", *configPath)

	var notifier pipeline.Notifier
	if cfg.Telegram.Enabled {
		telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("Failed to initialize Telegram client: %v", err)
			return 1
		}
		notifier = telegramClient
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	p, err := pipeline.New(cfg, notifier)
	if err != nil {
		logger.Error("Failed to initialize pipeline: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := p.Run(ctx, *stage)

	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("Failed to write metrics textfile: %v", err)
		}
	}

	if runErr != nil {
		logger.Error("Run failed: %v", runErr)
		return 1
	}
	if n := len(report.FailedUnits()); n > 0 {
		logger.Warn("Run completed with %d failed units", n)
	}
	return 0
}
