package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	SMTP          SMTPConfig          `mapstructure:"smtp"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Stripe        StripeConfig        `mapstructure:"stripe"`
	Site          SiteConfig          `mapstructure:"site"`
	Security      SecurityConfig      `mapstructure:"security"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// ChatBotConfig configures one bot-API notification channel. Recipients is a
// comma-separated list of chat ids; each is delivered to independently.
type ChatBotConfig struct {
	Token      string `mapstructure:"token"`
	Recipients string `mapstructure:"recipients"`
}

func (c ChatBotConfig) RecipientList() []string {
	if c.Recipients == "" {
		return nil
	}
	parts := strings.Split(c.Recipients, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type NotificationsConfig struct {
	Telegram   ChatBotConfig `mapstructure:"telegram"`
	Whatsapp   ChatBotConfig `mapstructure:"whatsapp"`
	AdminEmail string        `mapstructure:"admin_email"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type SiteConfig struct {
	// BaseURL is used to build confirmation and checkout callback links.
	BaseURL string `mapstructure:"base_url"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	ResetAttempts     int     `mapstructure:"reset_attempts"`
	ResetWindowMin    int     `mapstructure:"reset_window_min"`
}

// secrets are never committed to the YAML file; they override it from the
// environment.
type secrets struct {
	DBPassword      string `envconfig:"DB_PASSWORD"`
	JWTSecret       string `envconfig:"JWT_SECRET"`
	SMTPPassword    string `envconfig:"SMTP_PASSWORD"`
	TelegramToken   string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs string `envconfig:"TELEGRAM_CHAT_IDS"`
	WhatsappToken   string `envconfig:"WHATSAPP_BOT_TOKEN"`
	WhatsappChatIDs string `envconfig:"WHATSAPP_CHAT_IDS"`
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhook   string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	RedisURL        string `envconfig:"REDIS_URL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("", &sec); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}
	applySecrets(&config, sec)

	if config.RateLimit.ResetAttempts == 0 {
		config.RateLimit.ResetAttempts = 3
	}
	if config.RateLimit.ResetWindowMin == 0 {
		config.RateLimit.ResetWindowMin = 5
	}

	return &config, nil
}

func applySecrets(cfg *Config, sec secrets) {
	if sec.DBPassword != "" {
		cfg.Database.Password = sec.DBPassword
	}
	if sec.JWTSecret != "" {
		cfg.JWT.Secret = sec.JWTSecret
	}
	if sec.SMTPPassword != "" {
		cfg.SMTP.Password = sec.SMTPPassword
	}
	if sec.TelegramToken != "" {
		cfg.Notifications.Telegram.Token = sec.TelegramToken
	}
	if sec.TelegramChatIDs != "" {
		cfg.Notifications.Telegram.Recipients = sec.TelegramChatIDs
	}
	if sec.WhatsappToken != "" {
		cfg.Notifications.Whatsapp.Token = sec.WhatsappToken
	}
	if sec.WhatsappChatIDs != "" {
		cfg.Notifications.Whatsapp.Recipients = sec.WhatsappChatIDs
	}
	if sec.StripeSecretKey != "" {
		cfg.Stripe.SecretKey = sec.StripeSecretKey
	}
	if sec.StripeWebhook != "" {
		cfg.Stripe.WebhookSecret = sec.StripeWebhook
	}
	if sec.RedisURL != "" {
		cfg.Redis.URL = sec.RedisURL
	}
}
