package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/internal/classifier"
	"github.com/voicebudget/voice-ledger/internal/events"
	"github.com/voicebudget/voice-ledger/internal/transcription"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// DefaultPath is used when no config file is named explicitly
const DefaultPath = "config.toml"

// Config is the application configuration
type Config struct {
	Server        ServerConfig         `toml:"server"`
	Logging       LoggingConfig        `toml:"logging"`
	Storage       StorageConfig        `toml:"storage"`
	Transcription transcription.Config `toml:"transcription"`
	Completion    classifier.Config    `toml:"completion"`
	Events        events.Config        `toml:"events"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host                   string   `toml:"host"`
	Port                   int      `toml:"port"`
	CORSAllowedOrigins     []string `toml:"cors_allowed_origins"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	MaxConnections         int      `toml:"max_connections"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig selects and configures the record store
type StorageConfig struct {
	Backend    string `toml:"backend"` // sqlite, memory
	SQLitePath string `toml:"sqlite_path"`
}

// Default returns the configuration used when a key is absent from the file
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   8080,
			CORSAllowedOrigins:     []string{"*"},
			MaxUploadMB:            10,
			MaxConnections:         256,
			ReadTimeoutSeconds:     30,
			WriteTimeoutSeconds:    120,
			ShutdownTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "./data/voice-ledger.db",
		},
		Transcription: transcription.Config{
			Provider:        transcription.ProviderGoogle,
			Encoding:        "WEBM_OPUS",
			SampleRateHertz: 48000,
			LanguageCode:    "zh-TW",
			TimeoutSeconds:  30,
			Model:           "whisper-1",
		},
		Completion: classifier.Config{
			Provider:       "openrouter",
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "deepseek/deepseek-chat-v3-0324:free",
			TimeoutSeconds: 30,
		},
		Events: events.Config{
			Enabled:        false,
			Exchange:       "voice-ledger",
			TimeoutSeconds: 5,
		},
	}
}

// Load reads .env, the TOML file at path and the environment overrides, in that order.
// A missing file is only an error when path is not the default.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || path != DefaultPath {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

// applyEnv copies secrets and deployment overrides from the environment
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("COMPLETION_API_KEY"); v != "" {
		cfg.Completion.APIKey = v
	} else if v := getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Completion.APIKey = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		cfg.Transcription.APIKey = v
	}
	if v := getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		cfg.Transcription.CredentialsFile = v
	}
	if v := getenv("AMQP_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			cfg.Server.Port = -1
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.MaxUploadMB < 1 {
		problems = append(problems, fmt.Sprintf("invalid max_upload_mb %d: must be at least 1", c.Server.MaxUploadMB))
	}
	if c.Server.MaxConnections < 0 {
		problems = append(problems, "max_connections must not be negative")
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s'", c.Logging.Format))
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "sqlite_path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of [sqlite memory]", c.Storage.Backend))
	}

	t := c.Transcription
	if _, ok := audio.LookupFormat(t.Encoding); !ok {
		problems = append(problems, fmt.Sprintf("unsupported audio encoding '%s'", t.Encoding))
	}
	if t.SampleRateHertz <= 0 {
		problems = append(problems, "sample_rate_hertz must be positive")
	}
	if t.LanguageCode == "" {
		problems = append(problems, "language_code cannot be empty")
	}
	switch t.Provider {
	case transcription.ProviderGoogle:
	case transcription.ProviderOpenAI:
		if t.APIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai transcription provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid transcription provider '%s': must be one of [google openai]", t.Provider))
	}

	if c.Completion.Model == "" {
		problems = append(problems, "completion model cannot be empty")
	}
	if _, err := url.ParseRequestURI(c.Completion.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid completion base_url '%s'", c.Completion.BaseURL))
	}

	if c.Events.Enabled {
		if u, err := url.Parse(c.Events.URL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			problems = append(problems, "AMQP_URL must be an amqp:// or amqps:// URL when events are enabled")
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events exchange cannot be empty when events are enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes returns the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
