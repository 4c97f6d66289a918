package bot

import (
	"context"
	"fmt"
	"log"
	"time"
)

// PingHandler implements CommandHandler for the /ping command
type PingHandler struct {
	client *TelegramBot
	logger *log.Logger
}

// NewPingHandler creates a new PingHandler instance
func NewPingHandler(client *TelegramBot, logger *log.Logger) *PingHandler {
	return &PingHandler{
		client: client,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *PingHandler) Command() string {
	return "ping"
}

// Handle processes the /ping command and sends a pong response with timestamp and latency
func (h *PingHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	startTime := time.Now()

	h.logger.Printf("Processing /ping command for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Latency from command timestamp to processing start
	commandLatency := startTime.Sub(cmdCtx.Timestamp)

	pongMessage := fmt.Sprintf("🏓 Pong!\n\n"+
		"📅 Timestamp: %s\n"+
		"⚡ Command Latency: %v\n"+
		"✅ Status: Bot is responsive and operational",
		startTime.Format("2006-01-02 15:04:05 MST"),
		commandLatency.Round(time.Millisecond))

	if err := h.client.SendMessage(timeoutCtx, cmdCtx.ChatID, pongMessage); err != nil {
		h.logger.Printf("Failed to send pong message to chat %d: %v", cmdCtx.ChatID, err)
		return fmt.Errorf("failed to send pong message: %w", err)
	}

	totalResponseTime := time.Since(startTime)
	h.logger.Printf("Successfully processed /ping command for user %d (response time: %v, command latency: %v)",
		cmdCtx.UserID, totalResponseTime, commandLatency)

	return nil
}
