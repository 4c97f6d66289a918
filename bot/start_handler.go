package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"go-leech-bot/config"
)

// StartHandler implements CommandHandler for the /start command
type StartHandler struct {
	client *TelegramBot
	cfg    *config.BotConfig
	logger *log.Logger
}

// NewStartHandler creates a new StartHandler instance
func NewStartHandler(client *TelegramBot, cfg *config.BotConfig, logger *log.Logger) *StartHandler {
	return &StartHandler{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *StartHandler) Command() string {
	return "start"
}

// Handle processes the /start command and sends a welcome message
func (h *StartHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Printf("Processing /start command for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	welcomeMessage := fmt.Sprintf("👋 Hi! I'm a leech bot.\n\n"+
		"Send me a direct download link (or use /leech <url>) and I'll fetch "+
		"the file and deliver it to you through Telegram.\n\n"+
		"📏 Max file size: %s\n"+
		"⏳ Cooldown between requests: %s\n\n"+
		"Use /help to see everything I can do.",
		humanize.IBytes(uint64(h.cfg.Download.MaxFileSize)),
		h.cfg.Download.Cooldown)

	if err := h.client.SendMessage(timeoutCtx, cmdCtx.ChatID, welcomeMessage); err != nil {
		h.logger.Printf("Failed to send welcome message to chat %d: %v", cmdCtx.ChatID, err)
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	h.logger.Printf("Successfully processed /start command for user %d", cmdCtx.UserID)
	return nil
}
