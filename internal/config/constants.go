package config

import "time"

const (
	// Cache key prefix for per-user progress
	ProgressCacheKeyPrefix = "surveyData_"

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Upgrade request timeout
	RequestTimeout = 30 * time.Second

	// Rate limits (per minute)
	RateLimitRegular = 12
	RateLimitWindow  = time.Minute

	// HTTP server timeouts
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 15 * time.Second

	// Plans per page in the bot
	PlansPerPage = 5

	// Currency label used in user-facing text
	CurrencyLabel = "Ksh"
)
