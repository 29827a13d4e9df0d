package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	CachePath   string `env:"CACHE_PATH" envDefault:"data/cache.db"`

	// Profile store pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// Payment verification
	MerchantMarker   string        `env:"MERCHANT_MARKER" envDefault:"SURVEYPAY"`
	MinMessageLength int           `env:"MIN_MESSAGE_LENGTH" envDefault:"20"`
	VerifyDelay      time.Duration `env:"VERIFY_DELAY" envDefault:"1500ms"`

	// Reference documents; empty means the embedded defaults
	PlansConfigPath   string        `env:"PLANS_CONFIG_PATH"`
	SurveysConfigPath string        `env:"SURVEYS_CONFIG_PATH"`
	PlansReloadEvery  time.Duration `env:"PLANS_RELOAD_INTERVAL" envDefault:"5m"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Server
	Port int `env:"PORT" envDefault:"3000"`
	// AdminAPIToken guards operator routes; empty disables them.
	AdminAPIToken string `env:"ADMIN_API_TOKEN"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Daily quota reset
	DailyResetSpec string `env:"DAILY_RESET_SPEC" envDefault:"0 0 * * *"`
	Timezone       string `env:"TIMEZONE" envDefault:"Africa/Nairobi"`

	// Sessions idle this long are dropped from memory
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// Telegram logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicPlanUpgrade  int   `env:"LOG_TOPIC_PLAN_UPGRADE"`
	LogTopicRejected     int   `env:"LOG_TOPIC_REJECTED_PAYMENT"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.MerchantMarker) == "" {
		return nil, fmt.Errorf("parse config: MERCHANT_MARKER must not be blank")
	}
	if cfg.MinMessageLength < 0 {
		return nil, fmt.Errorf("parse config: MIN_MESSAGE_LENGTH must not be negative")
	}
	if cfg.SessionIdleTTL <= 0 {
		return nil, fmt.Errorf("parse config: SESSION_IDLE_TTL must be positive")
	}
	if _, err := cron.ParseStandard(cfg.DailyResetSpec); err != nil {
		return nil, fmt.Errorf("parse config: DAILY_RESET_SPEC: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// Location resolves Timezone, falling back to UTC+3 (EAT).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}
