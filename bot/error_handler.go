package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gotd/td/tg"

	"go-leech-bot/downloader"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrorTypeConfiguration ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeCommand
	ErrorTypeRuntime
)

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	case ErrorTypeNetwork:
		return "NETWORK"
	case ErrorTypeCommand:
		return "COMMAND"
	case ErrorTypeRuntime:
		return "RUNTIME"
	default:
		return "UNKNOWN"
	}
}

// ErrorContext provides context information for error handling
type ErrorContext struct {
	UserID        int64
	ChatID        int64
	Command       string
	CorrelationID string
	Timestamp     time.Time
}

// ErrorHandler provides centralized error management for the bot
type ErrorHandler struct {
	logger *log.Logger
	client *TelegramBot
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *log.Logger, client *TelegramBot) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		client: client,
	}
}

// HandleConfigError handles configuration-related errors
// These are critical errors that should cause the application to exit
func (e *ErrorHandler) HandleConfigError(err error) {
	e.logStructuredError(ErrorTypeConfiguration, err, nil, "Configuration error occurred")
	// Configuration errors are fatal - log and exit
	e.logger.Fatalf("FATAL: Configuration error: %v", err)
}

// HandleCommandError handles command processing errors
func (e *ErrorHandler) HandleCommandError(err error, cmdCtx *CommandContext) {
	errorCtx := &ErrorContext{
		UserID:        cmdCtx.UserID,
		ChatID:        cmdCtx.ChatID,
		Command:       cmdCtx.Command,
		CorrelationID: e.generateCorrelationID(),
		Timestamp:     time.Now(),
	}

	e.logStructuredError(ErrorTypeCommand, err, errorCtx, "Command processing error occurred")

	// Send user-friendly error message
	if err := e.sendUserErrorMessage(cmdCtx.ChatID, err, errorCtx.CorrelationID); err != nil {
		e.logger.Printf("ERROR: Failed to send error message to user (chat: %d, correlation: %s): %v",
			cmdCtx.ChatID, errorCtx.CorrelationID, err)
	}
}

// HandleRuntimeError handles unexpected runtime errors
func (e *ErrorHandler) HandleRuntimeError(err error) {
	errorCtx := &ErrorContext{
		CorrelationID: e.generateCorrelationID(),
		Timestamp:     time.Now(),
	}

	e.logStructuredError(ErrorTypeRuntime, err, errorCtx, "Runtime error occurred")

	// Runtime errors are logged but don't stop the application
	// The application should continue running for other users
}

// logStructuredError logs errors with structured information
func (e *ErrorHandler) logStructuredError(errorType ErrorType, err error, ctx *ErrorContext, message string) {
	logEntry := fmt.Sprintf("[%s] %s: %v", errorType.String(), message, err)

	if ctx != nil {
		logEntry += fmt.Sprintf(" | Correlation: %s | Timestamp: %s",
			ctx.CorrelationID, ctx.Timestamp.Format(time.RFC3339))

		if ctx.UserID != 0 {
			logEntry += fmt.Sprintf(" | User: %d", ctx.UserID)
		}

		if ctx.ChatID != 0 {
			logEntry += fmt.Sprintf(" | Chat: %d", ctx.ChatID)
		}

		if ctx.Command != "" {
			logEntry += fmt.Sprintf(" | Command: /%s", ctx.Command)
		}
	}

	// Log based on error severity
	switch errorType {
	case ErrorTypeConfiguration:
		e.logger.Printf("FATAL: %s", logEntry)
	case ErrorTypeNetwork, ErrorTypeRuntime:
		e.logger.Printf("ERROR: %s", logEntry)
	case ErrorTypeCommand:
		e.logger.Printf("WARN: %s", logEntry)
	default:
		e.logger.Printf("ERROR: %s", logEntry)
	}
}

// sendUserErrorMessage sends a user-friendly error message to the chat
func (e *ErrorHandler) sendUserErrorMessage(chatID int64, err error, correlationID string) error {
	if e.client == nil || e.client.GetClient() == nil {
		return fmt.Errorf("bot client is not available")
	}

	// Create user-friendly error message based on error type
	userMessage := UserFriendlyMessage(err, correlationID)

	// Create context with timeout for error message sending
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Determine peer type for the chat
	var peer tg.InputPeerClass
	if chatID > 0 {
		peer = &tg.InputPeerUser{UserID: chatID}
	} else {
		peer = &tg.InputPeerChat{ChatID: -chatID}
	}

	// Create and send the error message
	request := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  userMessage,
		RandomID: time.Now().UnixNano(),
	}

	_, err = e.client.GetClient().API().MessagesSendMessage(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to send error message via Telegram API: %w", err)
	}

	return nil
}

// UserFriendlyMessage maps an error to a message suitable for end users.
// Download errors carry a structured type, anything else gets a generic
// fallback. The correlation ID helps operators find the matching log line.
func UserFriendlyMessage(err error, correlationID string) string {
	var userMessage string

	var dlErr *downloader.DownloadError
	if errors.As(err, &dlErr) {
		switch dlErr.Type {
		case downloader.ErrorValidation:
			userMessage = "⚠️ That doesn't look like a valid download link. Send a direct http(s) URL."
		case downloader.ErrorRateLimited:
			userMessage = fmt.Sprintf("🚦 Slow down! Please wait %d seconds before your next request.", dlErr.WaitSeconds())
		case downloader.ErrorTimeout:
			userMessage = "⏱️ The download timed out. The server may be slow, please try again later."
		case downloader.ErrorConnection:
			userMessage = "🌐 I couldn't connect to that server. Check the link and try again."
		case downloader.ErrorHTTP:
			userMessage = fmt.Sprintf("❌ The server rejected the request (HTTP %d). The link may be dead or protected.", dlErr.StatusCode())
		case downloader.ErrorFilesystem:
			userMessage = "💾 I ran out of space or couldn't write the file. Please try again later."
		case downloader.ErrorRequest:
			userMessage = "⚠️ I couldn't build a request for that link. Please check the URL."
		default:
			userMessage = "❌ Something went wrong while processing your download. Please try again."
		}
	} else {
		userMessage = "❌ Something went wrong while processing your request. Please try again."
	}

	// Add correlation ID for debugging (only show first 8 characters)
	if len(correlationID) >= 8 {
		userMessage += fmt.Sprintf("\n\n🔧 Error ID: %s", correlationID[:8])
	}

	return userMessage
}

// generateCorrelationID generates a unique correlation ID for error tracking
func (e *ErrorHandler) generateCorrelationID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%1000000)
}

// RecoverFromPanic recovers from panics and logs them as runtime errors
func (e *ErrorHandler) RecoverFromPanic() {
	if r := recover(); r != nil {
		var err error
		if recovered, ok := r.(error); ok {
			err = recovered
		} else {
			err = fmt.Errorf("panic: %v", r)
		}

		e.HandleRuntimeError(fmt.Errorf("recovered from panic: %w", err))
	}
}
