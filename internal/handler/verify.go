package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/middleware"
	tg "github.com/set-night/surveypay/internal/telegram"
)

// handleVerify runs the verification-form flow on /verify <message>.
func (h *Handler) handleVerify(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}
	chatID := update.Message.Chat.ID

	message := ""
	if parts := strings.SplitN(update.Message.Text, " ", 2); len(parts) > 1 {
		message = parts[1]
	}
	if strings.TrimSpace(message) == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /verify <M-Pesa confirmation message>",
		})
		return
	}

	b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	res, err := h.upgrades.SubmitPayment(reqCtx, session.UserID, message)
	h.reportUpgradeError(session.UserID, res, err)

	if err := tg.SendLongMessage(ctx, b, chatID, tg.FormatUpgradeResult(res), nil); err != nil {
		slog.Error("send verify result", "error", err)
	}
}

// reportUpgradeError forwards rejected payments and unexpected failures to
// the operator log.
func (h *Handler) reportUpgradeError(userID string, res domain.UpgradeResult, err error) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMerchantMismatch),
		errors.Is(err, domain.ErrNoMatchingPlan),
		errors.Is(err, domain.ErrDowngrade):
		h.tgLogger.LogRejectedPayment(userID, res.Message)
	case errors.Is(err, domain.ErrPersistence):
		h.tgLogger.LogError(err, "upgrade for user "+userID)
	}
}
