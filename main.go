package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-leech-bot/bot"
	"go-leech-bot/config"
	"go-leech-bot/downloader"
	"go-leech-bot/storage"
)

// historyDBPath is where terminal download outcomes are persisted
const historyDBPath = "leech_history.db"

func main() {
	// One-shot CLI mode: download a single URL and exit
	if len(os.Args) > 1 && os.Args[1] == "get" {
		os.Exit(runDownloadCLI(os.Args[2:]))
	}

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	zapLogger, err := newZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// The rest of the program logs through the std interface backed by zap
	logger := zap.NewStdLog(zapLogger)

	logger.Printf("Bot configuration loaded successfully:")
	logger.Printf("- API ID: %d", cfg.APIID)
	logger.Printf("- API Hash: %s", maskString(cfg.APIHash))
	logger.Printf("- Bot Token: %s", maskString(cfg.Token))
	logger.Printf("- Dump Channel: %d", cfg.DumpChannelID)
	logger.Printf("- Log Level: %s", cfg.LogLevel)
	logger.Printf("- Workers: %d, Queue: %d", cfg.Download.Workers, cfg.Download.QueueSize)

	if err := run(cfg, logger, zapLogger); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
}

// run wires the download pipeline to the Telegram surface and blocks until a
// shutdown signal arrives
func run(cfg *config.BotConfig, logger *log.Logger, zapLogger *zap.Logger) error {
	history, err := storage.OpenHistoryStore(historyDBPath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	engine := downloader.NewEngine(downloader.EngineOptions{
		ConnectTimeout: cfg.Download.ConnectTimeout,
		ReadTimeout:    cfg.Download.ReadTimeout,
		ChunkSize:      cfg.Download.ChunkSize,
		TempDir:        cfg.Download.TempDir,
	}, logger)

	telegramBot, err := bot.NewTelegramBot(cfg, logger, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Progress flows engine -> bridge -> registry -> per-job status message
	registry := bot.NewReporterRegistry(logger)
	bridge := downloader.NewBridgeWithInterval(registry.Sink(), cfg.Download.EditInterval)
	if err := bridge.Start(); err != nil {
		return fmt.Errorf("failed to start progress bridge: %w", err)
	}

	pool := downloader.NewPool(engine, bridge, cfg.Download.Workers, cfg.Download.QueueSize, logger)
	limiter := bot.NewRateLimiter(cfg.Download.Cooldown)

	if err := telegramBot.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	uploader := bot.NewTelegramUploader(telegramBot, cfg.DumpChannelID, logger)

	leechHandler := bot.NewLeechHandler(telegramBot, pool, registry, limiter, uploader, history, cfg, logger)
	telegramBot.RegisterCommandHandler(bot.NewStartHandler(telegramBot, cfg, logger))
	telegramBot.RegisterCommandHandler(bot.NewHelpHandler(telegramBot, logger))
	telegramBot.RegisterCommandHandler(bot.NewPingHandler(telegramBot, logger))
	telegramBot.RegisterCommandHandler(bot.NewIDHandler(telegramBot, logger))
	telegramBot.RegisterCommandHandler(bot.NewHistoryHandler(telegramBot, history, logger))
	telegramBot.RegisterCommandHandler(leechHandler)
	telegramBot.RegisterDefaultHandler(leechHandler)

	// Keep the rate limiter map from growing forever
	reaperStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := limiter.Reap(time.Hour); removed > 0 {
					logger.Printf("Reaped %d stale rate limiter entries", removed)
				}
			case <-reaperStop:
				return
			}
		}
	}()

	logger.Printf("Bot is up, waiting for requests")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Printf("Received %v, shutting down", sig)

	// Stop intake first, then drain in-flight downloads, then stop the
	// progress machinery
	close(reaperStop)
	if err := telegramBot.Stop(); err != nil {
		logger.Printf("ERROR: Failed to stop bot cleanly: %v", err)
	}
	pool.Shutdown()
	bridge.Stop()

	logger.Printf("Shutdown complete")
	return nil
}

// newZapLogger builds a zap logger honoring the configured level
func newZapLogger(level string) (*zap.Logger, error) {
	if strings.ToUpper(level) == "DEBUG" {
		return zap.NewDevelopment()
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToUpper(level) {
	case "WARN":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "ERROR":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case "FATAL":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.FatalLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return zapConfig.Build()
}

// maskString masks sensitive information for logging
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
