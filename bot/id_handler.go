package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gotd/td/tg"
)

// IDHandler implements CommandHandler for the /id command. It is mainly an
// operator convenience for discovering the numeric ID of the dump channel.
type IDHandler struct {
	client *TelegramBot
	logger *log.Logger
}

// NewIDHandler creates a new IDHandler instance
func NewIDHandler(client *TelegramBot, logger *log.Logger) *IDHandler {
	return &IDHandler{
		client: client,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *IDHandler) Command() string {
	return "id"
}

// Handle processes the /id command and returns chat or user ID
func (h *IDHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Printf("Processing /id command for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var message string

	// With a reply, show the sender of the replied message instead
	if cmdCtx.ReplyToMessageID != 0 {
		repliedMessage, err := h.getRepliedMessage(timeoutCtx, cmdCtx)
		if err != nil {
			h.logger.Printf("Failed to get replied message: %v", err)
			message = fmt.Sprintf("Chat id: %d", cmdCtx.ChatID)
		} else {
			message = h.createUserIDMessage(repliedMessage.FromID)
		}
	} else {
		message = fmt.Sprintf("Chat id: %d", cmdCtx.ChatID)
	}

	if err := h.client.SendMessage(timeoutCtx, cmdCtx.ChatID, message); err != nil {
		h.logger.Printf("Failed to send ID message to chat %d: %v", cmdCtx.ChatID, err)
		return fmt.Errorf("failed to send ID message: %w", err)
	}

	h.logger.Printf("Successfully processed /id command for user %d", cmdCtx.UserID)
	return nil
}

// getRepliedMessage retrieves the message that was replied to
func (h *IDHandler) getRepliedMessage(ctx context.Context, cmdCtx *CommandContext) (*tg.Message, error) {
	if h.client == nil || h.client.GetClient() == nil {
		return nil, fmt.Errorf("bot client is not initialized")
	}

	messageIDs := []tg.InputMessageClass{
		&tg.InputMessageID{ID: int(cmdCtx.ReplyToMessageID)},
	}

	response, err := h.client.GetClient().API().MessagesGetMessages(ctx, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get replied message: %w", err)
	}

	switch msgs := response.(type) {
	case *tg.MessagesMessages:
		if len(msgs.Messages) > 0 {
			if msg, ok := msgs.Messages[0].(*tg.Message); ok {
				return msg, nil
			}
		}
	case *tg.MessagesMessagesSlice:
		if len(msgs.Messages) > 0 {
			if msg, ok := msgs.Messages[0].(*tg.Message); ok {
				return msg, nil
			}
		}
	}

	return nil, fmt.Errorf("replied message not found")
}

// createUserIDMessage creates a message showing the user ID
func (h *IDHandler) createUserIDMessage(fromID tg.PeerClass) string {
	switch peer := fromID.(type) {
	case *tg.PeerUser:
		return fmt.Sprintf("User id: %d", peer.UserID)
	case *tg.PeerChat:
		return fmt.Sprintf("Chat id: %d", peer.ChatID)
	case *tg.PeerChannel:
		return fmt.Sprintf("Channel id: %d", peer.ChannelID)
	default:
		return "Unable to determine user ID"
	}
}
