package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"go-leech-bot/storage"
)

// historyEntries is how many recent downloads /history shows
const historyEntries = 10

// HistoryHandler implements CommandHandler for the /history command
type HistoryHandler struct {
	client  *TelegramBot
	history *storage.HistoryStore
	logger  *log.Logger
}

// NewHistoryHandler creates a new HistoryHandler instance
func NewHistoryHandler(client *TelegramBot, history *storage.HistoryStore, logger *log.Logger) *HistoryHandler {
	return &HistoryHandler{
		client:  client,
		history: history,
		logger:  logger,
	}
}

// Command returns the command string this handler processes
func (h *HistoryHandler) Command() string {
	return "history"
}

// Handle processes the /history command and lists the user's recent downloads
func (h *HistoryHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Printf("Processing /history command for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	records, err := h.history.RecentForUser(cmdCtx.UserID, historyEntries)
	if err != nil {
		h.logger.Printf("Failed to query history for user %d: %v", cmdCtx.UserID, err)
		return fmt.Errorf("failed to query download history: %w", err)
	}

	message := h.formatHistory(records)

	if err := h.client.SendMessage(timeoutCtx, cmdCtx.ChatID, message); err != nil {
		h.logger.Printf("Failed to send history message to chat %d: %v", cmdCtx.ChatID, err)
		return fmt.Errorf("failed to send history message: %w", err)
	}

	h.logger.Printf("Successfully processed /history command for user %d (%d records)",
		cmdCtx.UserID, len(records))
	return nil
}

// formatHistory renders the record list for the user
func (h *HistoryHandler) formatHistory(records []storage.DownloadRecord) string {
	if len(records) == 0 {
		return "📂 You have no downloads yet. Send me a link to get started!"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📂 Your last %d downloads:\n\n", len(records)))

	for i, record := range records {
		var line string
		switch record.Outcome {
		case storage.OutcomeCompleted:
			line = fmt.Sprintf("%d. ✅ %s (%s)", i+1, record.Filename, humanize.IBytes(uint64(record.SizeBytes)))
		default:
			reason := record.ErrorKind
			if reason == "" {
				reason = "failed"
			}
			line = fmt.Sprintf("%d. ❌ %s (%s)", i+1, record.Filename, reason)
		}
		sb.WriteString(line)
		sb.WriteString(fmt.Sprintf("\n   %s\n", record.CreatedAt.Format("2006-01-02 15:04")))
	}

	return sb.String()
}
