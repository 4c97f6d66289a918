package downloader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gotd/td/tg"
)

// TelegramAPI defines the interface for Telegram API operations needed by the status reporter
type TelegramAPI interface {
	MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
	MessagesEditMessage(ctx context.Context, request *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error)
}

// progressBarCells is the width of the rendered progress bar
const progressBarCells = 20

// editTimeout bounds each individual Telegram API call made by the reporter
const editTimeout = 5 * time.Second

// StatusReporter maintains a single Telegram status message per download and
// rewrites it as the job moves through its lifecycle. It is the sink side of
// the progress bridge: UpdateProgress is only ever invoked from the bridge's
// consumer goroutine, so message edits never race.
type StatusReporter struct {
	api TelegramAPI

	mu        sync.RWMutex
	chatID    int64
	messageID int
	filename  string
	isActive  bool
	startTime time.Time
}

// NewStatusReporter creates a reporter bound to a Telegram API
func NewStatusReporter(api TelegramAPI) *StatusReporter {
	return &StatusReporter{api: api}
}

// StartTracking sends the initial status message for a download and records
// its ID for subsequent edits.
func (sr *StatusReporter) StartTracking(ctx context.Context, chatID int64, filename string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.isActive {
		return NewDownloadError(ErrorUnknown, "status tracking is already active")
	}

	sr.chatID = chatID
	sr.filename = filename
	sr.isActive = true
	sr.startTime = time.Now()
	sr.messageID = 0

	messageID, err := sr.sendMessage(ctx, fmt.Sprintf("📥 %s\n\n⏳ Starting download...", filename))
	if err != nil {
		sr.isActive = false
		return NewDownloadErrorWithCause(ErrorConnection, "failed to send initial status message", err)
	}

	sr.messageID = messageID
	return nil
}

// UpdateProgress rewrites the status message with a progress bar for the
// given percent. Safe to call with no active tracking (no-op).
func (sr *StatusReporter) UpdateProgress(percent int) error {
	sr.mu.RLock()
	if !sr.isActive || sr.messageID == 0 {
		sr.mu.RUnlock()
		return nil
	}
	chatID := sr.chatID
	messageID := sr.messageID
	filename := sr.filename
	sr.mu.RUnlock()

	message := fmt.Sprintf("📥 %s\n\n⏳ Downloading...\n\n%s %d%%",
		filename, renderProgressBar(percent, progressBarCells), percent)

	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	return sr.editMessage(ctx, chatID, messageID, message)
}

// ReportUploading switches the status message to the upload phase
func (sr *StatusReporter) ReportUploading() error {
	sr.mu.RLock()
	if !sr.isActive || sr.messageID == 0 {
		sr.mu.RUnlock()
		return nil
	}
	chatID := sr.chatID
	messageID := sr.messageID
	filename := sr.filename
	sr.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	return sr.editMessage(ctx, chatID, messageID,
		fmt.Sprintf("📥 %s\n\n✅ Download complete. Uploading...", filename))
}

// ReportError rewrites the status message with a terminal error description
func (sr *StatusReporter) ReportError(err error) error {
	sr.mu.RLock()
	if !sr.isActive || sr.messageID == 0 {
		sr.mu.RUnlock()
		return nil
	}
	chatID := sr.chatID
	messageID := sr.messageID
	filename := sr.filename
	startTime := sr.startTime
	sr.mu.RUnlock()

	errorMsg := "an error occurred"
	if de, ok := err.(*DownloadError); ok {
		errorMsg = de.Message
	} else if err != nil {
		errorMsg = err.Error()
	}

	message := fmt.Sprintf("📥 %s\n\n❌ %s\n\n⏱ Elapsed: %s",
		filename, errorMsg, time.Since(startTime).Round(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	return sr.editMessage(ctx, chatID, messageID, message)
}

// ReportComplete rewrites the status message with the final summary
func (sr *StatusReporter) ReportComplete(size int64) error {
	sr.mu.RLock()
	if !sr.isActive || sr.messageID == 0 {
		sr.mu.RUnlock()
		return nil
	}
	chatID := sr.chatID
	messageID := sr.messageID
	filename := sr.filename
	startTime := sr.startTime
	sr.mu.RUnlock()

	message := fmt.Sprintf("📥 %s\n\n✅ Done! Sent %s in %s.",
		filename, humanize.IBytes(uint64(size)), time.Since(startTime).Round(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	return sr.editMessage(ctx, chatID, messageID, message)
}

// Stop ends tracking and clears the reporter's state
func (sr *StatusReporter) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.isActive = false
	sr.messageID = 0
	sr.chatID = 0
	sr.filename = ""
}

// IsActive reports whether a status message is currently being tracked
func (sr *StatusReporter) IsActive() bool {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.isActive
}

// sendMessage sends a new message and returns its ID
func (sr *StatusReporter) sendMessage(ctx context.Context, message string) (int, error) {
	if sr.api == nil {
		return 0, NewDownloadError(ErrorUnknown, "telegram API is not initialized")
	}

	request := &tg.MessagesSendMessageRequest{
		Peer:     peerForChat(sr.chatID),
		Message:  message,
		RandomID: time.Now().UnixNano(),
	}

	updates, err := sr.api.MessagesSendMessage(ctx, request)
	if err != nil {
		return 0, err
	}

	return extractMessageID(updates), nil
}

// editMessage edits an existing message
func (sr *StatusReporter) editMessage(ctx context.Context, chatID int64, messageID int, message string) error {
	if sr.api == nil {
		return NewDownloadError(ErrorUnknown, "telegram API is not initialized")
	}

	request := &tg.MessagesEditMessageRequest{
		Peer:    peerForChat(chatID),
		ID:      messageID,
		Message: message,
	}

	_, err := sr.api.MessagesEditMessage(ctx, request)
	return err
}

// peerForChat maps a chat ID onto the right input peer class
func peerForChat(chatID int64) tg.InputPeerClass {
	if chatID > 0 {
		return &tg.InputPeerUser{UserID: chatID}
	}
	return &tg.InputPeerChat{ChatID: -chatID}
}

// extractMessageID extracts the message ID from Telegram API updates
func extractMessageID(updates tg.UpdatesClass) int {
	switch u := updates.(type) {
	case *tg.Updates:
		for _, update := range u.Updates {
			if msgUpdate, ok := update.(*tg.UpdateNewMessage); ok {
				if msg, ok := msgUpdate.Message.(*tg.Message); ok {
					return msg.ID
				}
			}
		}
	case *tg.UpdateShortSentMessage:
		return u.ID
	}
	return 0
}

// renderProgressBar renders a bar of filled and empty cells for a percent
func renderProgressBar(percent, cells int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := cells * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}
