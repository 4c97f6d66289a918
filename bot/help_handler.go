package bot

import (
	"context"
	"fmt"
	"log"
	"time"
)

// HelpHandler implements CommandHandler for the /help command
type HelpHandler struct {
	client *TelegramBot
	logger *log.Logger
}

// NewHelpHandler creates a new HelpHandler instance
func NewHelpHandler(client *TelegramBot, logger *log.Logger) *HelpHandler {
	return &HelpHandler{
		client: client,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *HelpHandler) Command() string {
	return "help"
}

// Handle processes the /help command and sends the command reference
func (h *HelpHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Printf("Processing /help command for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	helpMessage := "📖 Available commands:\n\n" +
		"/leech <url> [video] - Download a file from a direct link and receive it here. " +
		"Add 'video' to deliver it as a streamable video.\n" +
		"/history - Show your recent downloads\n" +
		"/ping - Check if the bot is responsive\n" +
		"/id - Show the current chat ID (reply to a message for the sender's ID)\n" +
		"/start - Show the welcome message\n" +
		"/help - Show this message\n\n" +
		"💡 You can also just send me a direct download link without any command."

	if err := h.client.SendMessage(timeoutCtx, cmdCtx.ChatID, helpMessage); err != nil {
		h.logger.Printf("Failed to send help message to chat %d: %v", cmdCtx.ChatID, err)
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.Printf("Successfully processed /help command for user %d", cmdCtx.UserID)
	return nil
}
