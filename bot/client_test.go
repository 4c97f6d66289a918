package bot

import (
	"io"
	"log"
	"testing"

	"go.uber.org/zap"

	"go-leech-bot/config"
)

func TestNewTelegramBot_Validation(t *testing.T) {
	cfg := &config.BotConfig{Token: "token", APIID: 1, APIHash: "hash", DumpChannelID: -100}
	logger := log.New(io.Discard, "", 0)
	zapLogger := zap.NewNop()

	testCases := []struct {
		name    string
		cfg     *config.BotConfig
		logger  *log.Logger
		zap     *zap.Logger
		wantErr bool
	}{
		{
			name:   "All dependencies present",
			cfg:    cfg,
			logger: logger,
			zap:    zapLogger,
		},
		{
			name:    "Nil config",
			cfg:     nil,
			logger:  logger,
			zap:     zapLogger,
			wantErr: true,
		},
		{
			name:    "Nil logger",
			cfg:     cfg,
			logger:  nil,
			zap:     zapLogger,
			wantErr: true,
		},
		{
			name:    "Nil zap logger",
			cfg:     cfg,
			logger:  logger,
			zap:     nil,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bot, err := NewTelegramBot(tc.cfg, tc.logger, tc.zap)
			if tc.wantErr {
				if err == nil {
					t.Error("Expected constructor error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTelegramBot failed: %v", err)
			}
			if bot.GetRouter() == nil {
				t.Error("Expected router to be initialized")
			}
			if bot.GetErrorHandler() == nil {
				t.Error("Expected error handler to be initialized")
			}
			if bot.zapLogger != zapLogger {
				t.Error("Expected the provided zap logger to be retained for the client")
			}
		})
	}
}
