package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/metrics"
)

const slowUpdate = 5 * time.Second

// Logging returns middleware that logs and times every update.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			info := describeUpdate(update)
			start := time.Now()

			next(ctx, b, update)

			elapsed := time.Since(start)
			metrics.BotUpdates.WithLabelValues(info.kind, info.action).Inc()
			metrics.BotUpdateLatency.WithLabelValues(info.kind).Observe(elapsed.Seconds())

			level := slog.LevelDebug
			if elapsed > slowUpdate {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "update processed",
				"kind", info.kind,
				"action", info.action,
				"chat_id", info.chatID,
				"user_id", info.userID,
				"duration", elapsed,
			)
		}
	}
}
