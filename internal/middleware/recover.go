package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/metrics"
)

// Recover returns middleware that turns handler panics into an error log.
// onPanic, if set, receives the panic with the update it happened on.
func Recover(onPanic func(err error)) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				metrics.BotPanics.Inc()

				info := describeUpdate(update)
				slog.Error("panic recovered in handler",
					"panic", r,
					"update_id", update.ID,
					"kind", info.kind,
					"action", info.action,
					"user_id", info.userID,
					"stack", string(debug.Stack()),
				)
				if onPanic != nil {
					onPanic(fmt.Errorf("panic in %s %s (user %d): %v", info.kind, info.action, info.userID, r))
				}
			}()
			next(ctx, b, update)
		}
	}
}
