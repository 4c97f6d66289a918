package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"go-leech-bot/config"
)

// TelegramBot wraps the gotgproto client and provides bot lifecycle management
type TelegramBot struct {
	client       *gotgproto.Client
	logger       *log.Logger
	zapLogger    *zap.Logger
	config       *config.BotConfig
	router       *CommandRouter
	errorHandler *ErrorHandler
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewTelegramBot creates a new TelegramBot instance with proper gotgproto
// client setup. zapLogger is handed to gotgproto directly; logger is the std
// interface the rest of the bot logs through.
func NewTelegramBot(cfg *config.BotConfig, logger *log.Logger, zapLogger *zap.Logger) (*TelegramBot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if zapLogger == nil {
		return nil, fmt.Errorf("zap logger cannot be nil")
	}

	// Create context for bot lifecycle management
	ctx, cancel := context.WithCancel(context.Background())

	bot := &TelegramBot{
		config:    cfg,
		logger:    logger,
		zapLogger: zapLogger,
		router:    NewCommandRouter(logger),
		ctx:       ctx,
		cancel:    cancel,
	}

	// The error handler needs the bot for user-facing messages, and the
	// router needs the error handler for panic recovery
	bot.errorHandler = NewErrorHandler(logger, bot)
	bot.router.SetErrorHandler(bot.errorHandler)

	return bot, nil
}

// GetErrorHandler returns the bot's centralized error handler
func (b *TelegramBot) GetErrorHandler() *ErrorHandler {
	return b.errorHandler
}

// Start initializes the gotgproto client, wires incoming messages into the
// command router and starts receiving updates
func (b *TelegramBot) Start() error {
	b.logger.Printf("Starting Telegram bot...")

	// Create gotgproto client options, reusing the level-configured zap logger
	clientOpts := &gotgproto.ClientOpts{
		Session: sessionMaker.SqlSession(sqlite.Open("leech_session.db")),
		Logger:  b.zapLogger,
	}

	// Initialize gotgproto client
	client, err := gotgproto.NewClient(b.config.APIID, b.config.APIHash, gotgproto.ClientTypeBot(b.config.Token), clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create gotgproto client: %w", err)
	}

	b.client = client

	// Route every incoming text message through the command router. The
	// dispatcher delivers ext types, the router works on raw tg updates.
	client.Dispatcher.AddHandler(handlers.NewMessage(filters.Message.Text, b.dispatchMessage))

	b.logger.Printf("Telegram bot client initialized successfully")

	// Start the client - this is a blocking call, so we run it in a goroutine
	go func() {
		b.logger.Printf("Starting gotgproto client...")
		b.client.Idle()
	}()

	// Wait a moment to ensure client is ready
	time.Sleep(100 * time.Millisecond)

	b.logger.Printf("Telegram bot started successfully")
	return nil
}

// dispatchMessage converts a dispatcher update into the raw update form the
// router understands and routes it
func (b *TelegramBot) dispatchMessage(ctx *ext.Context, update *ext.Update) error {
	if update.EffectiveMessage == nil || update.EffectiveMessage.Message == nil {
		return nil
	}

	return b.router.RouteCommand(ctx, &tg.UpdateNewMessage{
		Message: update.EffectiveMessage.Message,
	})
}

// Stop gracefully shuts down the bot
func (b *TelegramBot) Stop() error {
	b.logger.Printf("Stopping Telegram bot...")

	if b.cancel != nil {
		b.cancel()
	}

	if b.client != nil {
		// Give the client time to clean up
		time.Sleep(100 * time.Millisecond)
		b.logger.Printf("Bot client stopped")
	}

	b.logger.Printf("Telegram bot stopped successfully")
	return nil
}

// GetClient returns the underlying gotgproto client for advanced usage
func (b *TelegramBot) GetClient() *gotgproto.Client {
	return b.client
}

// IsRunning returns true if the bot is currently running
func (b *TelegramBot) IsRunning() bool {
	return b.client != nil && b.ctx.Err() == nil
}

// RegisterCommandHandler registers a command handler with the bot's router
func (b *TelegramBot) RegisterCommandHandler(handler CommandHandler) {
	b.router.RegisterHandler(handler)
}

// RegisterDefaultHandler registers the handler for plain (non-command) messages
func (b *TelegramBot) RegisterDefaultHandler(handler CommandHandler) {
	b.router.SetDefaultHandler(handler)
}

// GetRouter returns the command router for advanced usage
func (b *TelegramBot) GetRouter() *CommandRouter {
	return b.router
}

// SendMessage sends a plain text message to the given chat
func (b *TelegramBot) SendMessage(ctx context.Context, chatID int64, message string) error {
	if b.client == nil {
		return fmt.Errorf("bot client is not initialized")
	}

	var peer tg.InputPeerClass
	if chatID > 0 {
		peer = &tg.InputPeerUser{UserID: chatID}
	} else {
		peer = &tg.InputPeerChat{ChatID: -chatID}
	}

	request := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  message,
		RandomID: time.Now().UnixNano(),
	}

	_, err := b.client.API().MessagesSendMessage(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to send message via Telegram API: %w", err)
	}

	return nil
}
