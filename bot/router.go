package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// CommandRouter handles routing of commands to their respective handlers.
// Plain (non-command) text messages go to the default handler when one is
// set, which is how bare download links reach the leech flow.
type CommandRouter struct {
	handlers       map[string]CommandHandler
	defaultHandler CommandHandler
	logger         *log.Logger
	errorHandler   *ErrorHandler
}

// NewCommandRouter creates a new command router instance
func NewCommandRouter(logger *log.Logger) *CommandRouter {
	return &CommandRouter{
		handlers: make(map[string]CommandHandler),
		logger:   logger,
	}
}

// SetErrorHandler sets the error handler for the router
func (r *CommandRouter) SetErrorHandler(errorHandler *ErrorHandler) {
	r.errorHandler = errorHandler
}

// RegisterHandler registers a command handler for a specific command
func (r *CommandRouter) RegisterHandler(handler CommandHandler) {
	command := handler.Command()
	r.handlers[command] = handler
	r.logger.Printf("Registered handler for command: /%s", command)
}

// SetDefaultHandler registers the handler for plain text messages
func (r *CommandRouter) SetDefaultHandler(handler CommandHandler) {
	r.defaultHandler = handler
	r.logger.Printf("Registered default handler for plain messages")
}

// RouteCommand processes an incoming message and routes it to the appropriate handler
func (r *CommandRouter) RouteCommand(ctx context.Context, update *tg.UpdateNewMessage) error {
	// Extract command context from the update
	cmdCtx, err := r.extractCommandContext(update)
	if err != nil {
		return fmt.Errorf("failed to extract command context: %w", err)
	}

	// Plain messages go to the default handler
	handler := r.defaultHandler
	if cmdCtx.Command != "" {
		var exists bool
		handler, exists = r.handlers[cmdCtx.Command]
		if !exists {
			r.logger.Printf("No handler found for command: /%s", cmdCtx.Command)
			return nil // Not an error, just no handler available
		}
	}
	if handler == nil || (cmdCtx.Command == "" && cmdCtx.Args == "") {
		return nil
	}

	r.logger.Printf("Routing message to /%s handler (user: %d, chat: %d)",
		handler.Command(), cmdCtx.UserID, cmdCtx.ChatID)

	// Add panic recovery for command handlers
	defer func() {
		if r.errorHandler != nil {
			r.errorHandler.RecoverFromPanic()
		}
	}()

	if err := handler.Handle(ctx, cmdCtx); err != nil {
		// Use error handler if available, otherwise return the error
		if r.errorHandler != nil {
			r.errorHandler.HandleCommandError(err, cmdCtx)
			return nil // Error has been handled, don't propagate
		}
		return fmt.Errorf("handler failed for command /%s: %w", handler.Command(), err)
	}

	return nil
}

// extractCommandContext extracts command context information from a Telegram update
func (r *CommandRouter) extractCommandContext(update *tg.UpdateNewMessage) (*CommandContext, error) {
	message, ok := update.Message.(*tg.Message)
	if !ok {
		return nil, fmt.Errorf("update does not contain a message")
	}

	messageText := message.Message

	// Extract user information
	var userID int64
	if fromUser, ok := message.FromID.(*tg.PeerUser); ok {
		userID = fromUser.UserID
	}

	// Extract chat ID
	var chatID int64
	switch peer := message.PeerID.(type) {
	case *tg.PeerUser:
		chatID = peer.UserID
	case *tg.PeerChat:
		chatID = peer.ChatID
	case *tg.PeerChannel:
		chatID = peer.ChannelID
	}

	// Extract reply message ID if this is a reply
	var replyToMessageID int32
	if message.ReplyTo != nil {
		if replyHeader, ok := message.ReplyTo.(*tg.MessageReplyHeader); ok {
			replyToMessageID = int32(replyHeader.ReplyToMsgID)
		}
	}

	cmdCtx := &CommandContext{
		Update:           update,
		UserID:           userID,
		ChatID:           chatID,
		MessageID:        message.ID,
		ReplyToMessageID: replyToMessageID,
		Timestamp:        time.Now(),
	}

	// A plain message becomes the default handler's argument
	if !strings.HasPrefix(messageText, "/") {
		cmdCtx.Args = strings.TrimSpace(messageText)
		return cmdCtx, nil
	}

	// Parse command and arguments
	parts := strings.SplitN(messageText[1:], " ", 2) // Remove leading slash
	cmdCtx.Command = parts[0]
	if len(parts) > 1 {
		cmdCtx.Args = strings.TrimSpace(parts[1])
	}

	return cmdCtx, nil
}

// GetRegisteredCommands returns a list of all registered commands
func (r *CommandRouter) GetRegisteredCommands() []string {
	commands := make([]string, 0, len(r.handlers))
	for command := range r.handlers {
		commands = append(commands, command)
	}
	return commands
}

// HasHandler returns true if a handler is registered for the given command
func (r *CommandRouter) HasHandler(command string) bool {
	_, exists := r.handlers[command]
	return exists
}
