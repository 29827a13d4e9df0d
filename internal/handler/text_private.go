package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/middleware"
	tg "github.com/set-night/surveypay/internal/telegram"
)

// HandleTextPrivate treats any free text in a private chat as a possible
// pasted payment confirmation.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	res, ok := h.upgrades.DetectPayment(reqCtx, session.UserID, text)
	if !ok {
		hint := "Send /plans to see plans or /surveys to start earning."
		if strings.Contains(strings.ToUpper(text), "KSH") {
			hint = "That doesn't look like a payment to our till. If you paid, send /verify followed by the full confirmation message."
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   hint,
		})
		return
	}

	if !res.Upgrade.Success {
		h.tgLogger.LogRejectedPayment(session.UserID, res.Upgrade.Message)
	}

	if err := tg.SendLongMessage(ctx, b, chatID, tg.FormatDetected(res), nil); err != nil {
		slog.Error("send detect result", "error", err)
	}
}
