package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/middleware"
	"github.com/set-night/surveypay/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"Complete surveys, earn money and upgrade your plan to unlock more surveys per day.\n\n"+
			"Current plan: *%s*\n\n"+
			"📋 *Commands:*\n"+
			"/plans — Plans and upgrades\n"+
			"/surveys — Available surveys\n"+
			"/progress — Your earnings\n"+
			"/verify <message> — Verify an M-Pesa payment\n\n"+
			"You can also just paste your M-Pesa confirmation SMS here.",
		telegram.EscapeMarkdown(session.FirstName),
		telegram.EscapeMarkdown(session.Progress.CurrentPlanName),
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      welcomeText,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
