package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Locale      string
	MediaDir    string
	Database    DatabaseConfig
	Channel     ChannelConfig
	Dispatch    DispatchConfig
	Phone       PhoneConfig
	QA          QAConfig
	Store       StoreConfig
	Webhook     WebhookConfig
	Admin       AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type ChannelConfig struct {
	BaseURL           string
	Instance          string
	APIKey            string
	AddressSuffix     string
	RequestTimeout    time.Duration
	StatePollInterval time.Duration
}

type DispatchConfig struct {
	Delay          time.Duration
	SendTimeout    time.Duration
	AlternateDelay time.Duration
}

type PhoneConfig struct {
	Region string
}

type QAConfig struct {
	Enabled               bool
	Matcher               string
	SimilarityThreshold   float64
	FallbackMessage       string
	SendProcessingMessage bool
	ProcessingMessage     string
	DelayBetweenResponses time.Duration
	AudioAsVoiceNote      bool
}

type StoreConfig struct {
	CartBaseURL string
	TrackingURL string
}

type WebhookConfig struct {
	Token          string
	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
}

type AdminConfig struct {
	APIKeyHash string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Locale:      getEnvOrViper("LOCALE", "pt-BR"),
		MediaDir:    getEnvOrViper("MEDIA_DIR", "./data/media"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "ordernotify"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Channel: ChannelConfig{
			BaseURL:           getEnvOrViper("CHANNEL_BASE_URL", ""),
			Instance:          getEnvOrViper("CHANNEL_INSTANCE", ""),
			APIKey:            getEnvOrViper("CHANNEL_API_KEY", ""),
			AddressSuffix:     getEnvOrViper("CHANNEL_ADDRESS_SUFFIX", "@c.us"),
			RequestTimeout:    getDuration("CHANNEL_REQUEST_TIMEOUT", 30*time.Second),
			StatePollInterval: getDuration("CHANNEL_STATE_POLL_INTERVAL", 30*time.Second),
		},
		Dispatch: DispatchConfig{
			Delay:          getDuration("DISPATCH_DELAY", 5500*time.Millisecond),
			SendTimeout:    getDuration("DISPATCH_SEND_TIMEOUT", 60*time.Second),
			AlternateDelay: getDuration("ALTERNATE_DELAY", 10*time.Second),
		},
		Phone: PhoneConfig{
			Region: getEnvOrViper("PHONE_REGION", "BR"),
		},
		QA: QAConfig{
			Enabled:               getBool("QA_ENABLED", true),
			Matcher:               getEnvOrViper("QA_MATCHER", "trigger"),
			SimilarityThreshold:   getFloat("QA_SIMILARITY_THRESHOLD", 0.7),
			FallbackMessage:       getEnvOrViper("QA_FALLBACK_MESSAGE", ""),
			SendProcessingMessage: getBool("QA_SEND_PROCESSING_MESSAGE", false),
			ProcessingMessage:     getEnvOrViper("QA_PROCESSING_MESSAGE", "Um momento, estou verificando..."),
			DelayBetweenResponses: getDuration("QA_DELAY_BETWEEN_RESPONSES", 3*time.Second),
			AudioAsVoiceNote:      getBool("QA_AUDIO_AS_VOICE_NOTE", true),
		},
		Store: StoreConfig{
			CartBaseURL: getEnvOrViper("STORE_CART_BASE_URL", "https://seguro.fuscashop.com/r/"),
			TrackingURL: getEnvOrViper("STORE_TRACKING_URL", "https://fuscashop.com/pages/rastrear-pedido"),
		},
		Webhook: WebhookConfig{
			Token:          getEnvOrViper("WEBHOOK_TOKEN", ""),
			MaxBodyBytes:   int64(getInt("WEBHOOK_MAX_BODY_BYTES", 1<<20)),
			RateLimitRPS:   getFloat("WEBHOOK_RATE_LIMIT_RPS", 20),
			RateLimitBurst: getInt("WEBHOOK_RATE_LIMIT_BURST", 40),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnvOrViper("ADMIN_API_KEY_HASH", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Channel.BaseURL == "" {
		return fmt.Errorf("CHANNEL_BASE_URL is required")
	}
	if c.Channel.Instance == "" {
		return fmt.Errorf("CHANNEL_INSTANCE is required")
	}
	if c.QA.Matcher != "trigger" && c.QA.Matcher != "similarity" {
		return fmt.Errorf("QA_MATCHER must be trigger or similarity, got %q", c.QA.Matcher)
	}
	if c.QA.SimilarityThreshold < 0 || c.QA.SimilarityThreshold > 1 {
		return fmt.Errorf("QA_SIMILARITY_THRESHOLD must be between 0 and 1")
	}
	if c.Webhook.MaxBodyBytes <= 0 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be positive")
	}
	if c.Dispatch.Delay < 0 {
		return fmt.Errorf("DISPATCH_DELAY must not be negative")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// getDuration accepts Go durations ("5.5s") or plain milliseconds ("5500")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	if ms, err := cast.ToInt64E(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int) int {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	i, err := cast.ToIntE(raw)
	if err != nil {
		return defaultValue
	}
	return i
}

func getFloat(key string, defaultValue float64) float64 {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return defaultValue
	}
	return f
}
