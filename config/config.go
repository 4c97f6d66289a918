package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// BotConfig holds all configuration values for the Telegram leech bot
type BotConfig struct {
	Token         string // Telegram bot token
	APIID         int    // Telegram API ID
	APIHash       string // Telegram API Hash
	DumpChannelID int64  // Channel files are uploaded to before relaying
	LogLevel      string // Logging level (DEBUG, INFO, WARN, ERROR, FATAL)

	Download Settings // Tunable download settings
}

// Settings holds the tunable download parameters, loaded from the
// environment with defaults matching the intended production values.
type Settings struct {
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"30s"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"30m"`
	ChunkSize      int           `envconfig:"CHUNK_SIZE" default:"8192"`
	Workers        int           `envconfig:"MAX_WORKERS" default:"3"`
	QueueSize      int           `envconfig:"QUEUE_SIZE" default:"32"`
	Cooldown       time.Duration `envconfig:"REQUEST_COOLDOWN" default:"10s"`
	MaxFileSize    int64         `envconfig:"MAX_FILE_SIZE" default:"2147483648"`
	EditInterval   time.Duration `envconfig:"PROGRESS_EDIT_INTERVAL" default:"2s"`
	TempDir        string        `envconfig:"DOWNLOAD_TEMP_DIR"`
}

// LoadConfig loads and validates the bot configuration from environment variables
// Returns a BotConfig struct or an error if validation fails
func LoadConfig() (*BotConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Create and use environment validator
	validator := NewEnvValidator()

	// Validate required environment variables
	if err := validator.ValidateRequired(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	// Get API credentials
	apiID, apiHash, err := validator.GetAPICredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to get API credentials: %w", err)
	}

	// Get bot token
	token := validator.GetBotToken()
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required but not set")
	}

	// Get dump channel
	dumpChannelID, err := validator.GetDumpChannelID()
	if err != nil {
		return nil, fmt.Errorf("failed to get dump channel ID: %w", err)
	}

	// Get log level with default
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO" // Default log level
	}

	// Load tunable download settings
	var settings Settings
	if err := envconfig.Process("", &settings); err != nil {
		return nil, fmt.Errorf("failed to load download settings: %w", err)
	}

	config := &BotConfig{
		Token:         token,
		APIID:         apiID,
		APIHash:       apiHash,
		DumpChannelID: dumpChannelID,
		LogLevel:      logLevel,
		Download:      settings,
	}

	return config, nil
}

// Validate performs additional validation on the loaded configuration
func (c *BotConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot token cannot be empty")
	}

	if c.APIID <= 0 {
		return fmt.Errorf("API ID must be a positive integer, got: %d", c.APIID)
	}

	if c.APIHash == "" {
		return fmt.Errorf("API hash cannot be empty")
	}

	if c.DumpChannelID == 0 {
		return fmt.Errorf("dump channel ID cannot be zero")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
		"FATAL": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s. Valid levels are: DEBUG, INFO, WARN, ERROR, FATAL", c.LogLevel)
	}

	return c.Download.Validate()
}

// Validate checks the tunable settings for values the downloader cannot work with
func (s *Settings) Validate() error {
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got: %v", s.ConnectTimeout)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got: %v", s.ReadTimeout)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got: %d", s.ChunkSize)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got: %d", s.Workers)
	}
	if s.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got: %d", s.MaxFileSize)
	}
	return nil
}
