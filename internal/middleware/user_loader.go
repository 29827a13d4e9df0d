package middleware

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/domain"
)

type ctxKey string

const SessionKey ctxKey = "session"

// Session is the Telegram user behind an update plus their loaded progress.
type Session struct {
	UserID     string
	TelegramID int64
	FirstName  string
	Username   string
	IsAdmin    bool
	Progress   domain.UserProgress
}

// GetSession extracts the session from context.
func GetSession(ctx context.Context) *Session {
	s, ok := ctx.Value(SessionKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// UserID maps a Telegram account to the user id used by the stores.
func UserID(telegramID int64) string {
	return strconv.FormatInt(telegramID, 10)
}

type progressLoader interface {
	Get(userID string) (domain.UserProgress, bool)
	Load(ctx context.Context, userID string) (domain.UserProgress, error)
}

type profileRegistrar interface {
	EnsureProfile(ctx context.Context, userID, defaultPlan string) (bool, error)
}

// RegisterFunc is called once for every newly created profile.
type RegisterFunc func(userID, name, username string)

// UserLoader returns middleware that registers the sender on first contact
// and loads their progress into context. Senders with a live session skip the
// profile store.
func UserLoader(progress progressLoader, profiles profileRegistrar, defaultPlan func() string, cfg interface{ IsAdmin(int64) bool }, onRegister RegisterFunc) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			userID := UserID(from.ID)

			p, ok := progress.Get(userID)
			if !ok {
				created, err := profiles.EnsureProfile(ctx, userID, defaultPlan())
				if err != nil {
					slog.Error("ensure profile", "error", err, "user_id", userID)
				} else if created && onRegister != nil {
					onRegister(userID, from.FirstName, from.Username)
				}

				p, err = progress.Load(ctx, userID)
				if err != nil {
					slog.Error("load progress", "error", err, "user_id", userID)
					next(ctx, b, update)
					return
				}
			}

			ctx = WithSession(ctx, &Session{
				UserID:     userID,
				TelegramID: from.ID,
				FirstName:  from.FirstName,
				Username:   from.Username,
				IsAdmin:    cfg.IsAdmin(from.ID),
				Progress:   p,
			})

			next(ctx, b, update)
		}
	}
}
