package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/middleware"
	tg "github.com/set-night/surveypay/internal/telegram"
)

// handleStat shows admins how many users are on each plan.
func (h *Handler) handleStat(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil || !session.IsAdmin {
		return
	}
	chatID := update.Message.Chat.ID

	counts, err := h.counter.CountByPlan(ctx)
	if err != nil {
		slog.Error("count by plan", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to load statistics.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📈 *Users by plan*\n\n")
	var total int64
	for _, n := range counts {
		total += n
	}
	listed := make(map[string]bool)
	for _, t := range h.plans.Tiers() {
		listed[t.Name] = true
		fmt.Fprintf(&sb, "%s: %d\n", tg.EscapeMarkdown(t.Name), counts[t.Name])
	}
	for name, n := range counts {
		if !listed[name] {
			fmt.Fprintf(&sb, "%s (retired): %d\n", tg.EscapeMarkdown(name), n)
		}
	}
	fmt.Fprintf(&sb, "\n*Total:* %d\n", total)
	fmt.Fprintf(&sb, "*Till:* `%s` · *Marker:* `%s`", h.plans.TillNumber(), h.cfg.MerchantMarker)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
