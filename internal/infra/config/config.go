package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by the document provider.
const (
	SourceGoogleDocs  = "googledocs"
	SourceObjectStore = "objectstore"
	SourceFile        = "file"
)

// Telegram transport modes.
const (
	TelegramPolling  = "polling"
	TelegramWebhook  = "webhook"
	TelegramDisabled = "disabled"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	QA       QAConfig       `yaml:"qa"`
	Source   SourceConfig   `yaml:"source"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Postgres PostgresConfig `yaml:"postgres"`
	Telegram TelegramConfig `yaml:"telegram"`
	Bot      BotConfig      `yaml:"bot"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	AdminToken     string          `yaml:"adminToken"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// QAConfig controls the answer cache and matching.
type QAConfig struct {
	RefreshInterval    time.Duration `yaml:"refreshInterval"`
	DefaultReply       string        `yaml:"defaultReply"`
	UnavailableReply   string        `yaml:"unavailableReply"`
	Matchers           []string      `yaml:"matchers"`
	BackgroundRefresh  bool          `yaml:"backgroundRefresh"`
	TopRecommendations int           `yaml:"topRecommendations"`
}

// SourceConfig selects where the Q&A document is read from.
type SourceConfig struct {
	Kind        string            `yaml:"kind"`
	Timeout     time.Duration     `yaml:"timeout"`
	GoogleDocs  GoogleDocsConfig  `yaml:"googleDocs"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
	File        FileConfig        `yaml:"file"`
}

// GoogleDocsConfig holds the document ID and service account credentials.
type GoogleDocsConfig struct {
	DocumentID      string `yaml:"documentId"`
	CredentialsJSON string `yaml:"credentialsJson"`
	CredentialsFile string `yaml:"credentialsFile"`
	BaseURL         string `yaml:"baseUrl"`
}

// ObjectStoreConfig points at a text object in an S3 compatible bucket.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// FileConfig reads the document from local disk.
type FileConfig struct {
	Path string `yaml:"path"`
}

// ValkeyConfig contains connection information for snapshot and trending storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings for the query log.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// TelegramConfig configures the Bot API transport.
type TelegramConfig struct {
	Token         string        `yaml:"token"`
	Mode          string        `yaml:"mode"`
	BaseURL       string        `yaml:"baseUrl"`
	WebhookURL    string        `yaml:"webhookUrl"`
	WebhookSecret string        `yaml:"webhookSecret"`
	PollTimeout   time.Duration `yaml:"pollTimeout"`
}

// BotConfig holds the fixed replies of the chat bot.
type BotConfig struct {
	Greeting     string `yaml:"greeting"`
	Help         string `yaml:"help"`
	ErrorReply   string `yaml:"errorReply"`
	CreatorLabel string `yaml:"creatorLabel"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_ADMIN_TOKEN"); v != "" {
		cfg.HTTP.AdminToken = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("QA_REFRESH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.QA.RefreshInterval = parsed
		}
	}
	if v := os.Getenv("QA_DEFAULT_REPLY"); v != "" {
		cfg.QA.DefaultReply = v
	}
	if v := os.Getenv("QA_MATCHERS"); v != "" {
		cfg.QA.Matchers = splitList(v)
	}
	if v := os.Getenv("QA_BACKGROUND_REFRESH"); v != "" {
		cfg.QA.BackgroundRefresh = parseBool(v)
	}
	if v := os.Getenv("SOURCE_KIND"); v != "" {
		cfg.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("GOOGLE_DOC_ID"); v != "" {
		cfg.Source.GoogleDocs.DocumentID = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_JSON"); v != "" {
		cfg.Source.GoogleDocs.CredentialsJSON = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.Source.GoogleDocs.CredentialsFile = v
	}
	if v := os.Getenv("SOURCE_OBJECT_ENDPOINT"); v != "" {
		cfg.Source.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("SOURCE_OBJECT_ACCESS_KEY"); v != "" {
		cfg.Source.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("SOURCE_OBJECT_SECRET_KEY"); v != "" {
		cfg.Source.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("SOURCE_OBJECT_BUCKET"); v != "" {
		cfg.Source.ObjectStore.Bucket = v
	}
	if v := os.Getenv("SOURCE_OBJECT_KEY"); v != "" {
		cfg.Source.ObjectStore.Key = v
	}
	if v := os.Getenv("SOURCE_FILE_PATH"); v != "" {
		cfg.Source.File.Path = v
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_MODE"); v != "" {
		cfg.Telegram.Mode = strings.ToLower(v)
	} else if v := os.Getenv("RENDER"); v != "" {
		if parseBool(v) {
			cfg.Telegram.Mode = TelegramWebhook
		}
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Telegram.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_WEBHOOK_SECRET"); v != "" {
		cfg.Telegram.WebhookSecret = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":10000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		QA: QAConfig{
			RefreshInterval:  time.Hour,
			DefaultReply:     "Ah-ah! I no fit find answer for your question for my database. Na wa o! Life hard sha.",
			UnavailableReply: "Sorry, I can't access my knowledge base right now. Try again small time.",
			Matchers:         []string{"exact", "contains", "overlap"},
		},
		Source: SourceConfig{
			Kind:    SourceGoogleDocs,
			Timeout: 10 * time.Second,
		},
		Valkey: ValkeyConfig{
			Prefix: "iknowall",
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Telegram: TelegramConfig{
			Mode:        TelegramPolling,
			PollTimeout: 30 * time.Second,
		},
		Bot: BotConfig{
			Greeting:     "Wetin you want? I Know All dey here to tell you raw truth about life. Ask me anything, but no expect sugar-coated lies.",
			Help:         "Just type your question. I go find answer for my book.",
			ErrorReply:   "Abeg, something scatter! Try again small time. Na life just show us pepper.",
			CreatorLabel: "Created by Arewa Michael",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.QA.RefreshInterval <= 0 {
		return errors.New("qa.refreshInterval must be positive")
	}
	if strings.TrimSpace(c.QA.DefaultReply) == "" {
		return errors.New("qa.defaultReply cannot be empty")
	}
	if strings.TrimSpace(c.QA.UnavailableReply) == "" {
		return errors.New("qa.unavailableReply cannot be empty")
	}
	if c.QA.TopRecommendations < 0 {
		return errors.New("qa.topRecommendations cannot be negative")
	}
	if c.Source.Timeout <= 0 {
		return errors.New("source.timeout must be positive")
	}
	switch c.Source.Kind {
	case SourceGoogleDocs:
		if strings.TrimSpace(c.Source.GoogleDocs.DocumentID) == "" {
			return errors.New("source.googleDocs.documentId cannot be empty")
		}
		if c.Source.GoogleDocs.CredentialsJSON == "" && c.Source.GoogleDocs.CredentialsFile == "" {
			return errors.New("source.googleDocs requires credentialsJson or credentialsFile")
		}
	case SourceObjectStore:
		if c.Source.ObjectStore.Endpoint == "" || c.Source.ObjectStore.Bucket == "" || c.Source.ObjectStore.Key == "" {
			return errors.New("source.objectStore requires endpoint, bucket and key")
		}
	case SourceFile:
		if strings.TrimSpace(c.Source.File.Path) == "" {
			return errors.New("source.file.path cannot be empty")
		}
	default:
		return fmt.Errorf("source.kind %q is not supported", c.Source.Kind)
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	switch c.Telegram.Mode {
	case TelegramDisabled:
	case TelegramPolling, TelegramWebhook:
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return errors.New("telegram.token cannot be empty")
		}
		if c.Telegram.Mode == TelegramWebhook && strings.TrimSpace(c.Telegram.WebhookURL) == "" {
			return errors.New("telegram.webhookUrl cannot be empty in webhook mode")
		}
	default:
		return fmt.Errorf("telegram.mode %q is not supported", c.Telegram.Mode)
	}
	return nil
}

// WebhookPathSecret returns the path secret for the Telegram webhook, falling back to the bot token.
func (c TelegramConfig) WebhookPathSecret() string {
	if c.WebhookSecret != "" {
		return c.WebhookSecret
	}
	return c.Token
}
