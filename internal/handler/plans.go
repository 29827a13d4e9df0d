package handler

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/middleware"
	"github.com/set-night/surveypay/internal/service"
	tg "github.com/set-night/surveypay/internal/telegram"
)

func (h *Handler) handlePlans(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}

	tiers := h.plans.Tiers()
	current := session.Progress.CurrentPlanName

	if err := tg.SendLongMessage(ctx, b, update.Message.Chat.ID,
		tg.FormatPlans(tiers, current),
		tg.PlansKeyboard(tiers, current, 0, config.PlansPerPage),
	); err != nil {
		slog.Error("send plans", "error", err)
	}
}

func (h *Handler) handlePlansPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	session := middleware.GetSession(ctx)
	chatID, msgID, ok := callbackMessage(update)
	if session == nil || !ok {
		answer(ctx, b, update, "", false)
		return
	}

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, tg.PlansPageCallbackPrefix+"_"))

	tiers := h.plans.Tiers()
	current := session.Progress.CurrentPlanName
	answer(ctx, b, update, "", false)

	if err := tg.EditMessage(ctx, b, chatID, msgID,
		tg.FormatPlans(tiers, current),
		tg.PlansKeyboard(tiers, current, page, config.PlansPerPage),
	); err != nil {
		slog.Warn("edit plans page", "error", err)
	}
}

// handlePlanSelect shows payment instructions for plan_<index>.
func (h *Handler) handlePlanSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	session := middleware.GetSession(ctx)
	chatID, msgID, ok := callbackMessage(update)
	if session == nil || !ok {
		answer(ctx, b, update, "", false)
		return
	}

	cfg := h.plans.Get()
	tiers := cfg.Tiers()

	idx, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, tg.PlanCallbackPrefix))
	if err != nil || idx < 0 || idx >= len(tiers) {
		answer(ctx, b, update, service.ReasonInvalidPlan, true)
		return
	}
	target := tiers[idx]

	current := session.Progress.CurrentPlanName
	if _, ok := domain.FindPlan(tiers, current); ok {
		if check := service.ValidateTransition(current, target.Name, tiers); !check.OK {
			answer(ctx, b, update, check.Reason, true)
			return
		}
	}
	if target.Name == current {
		answer(ctx, b, update, "You are already on this plan", false)
		return
	}

	answer(ctx, b, update, "", false)

	back := tg.InlineKeyboard(tg.ButtonRow(tg.InlineButton("⬅️ Back to plans", tg.PlansPageCallbackPrefix+"_0")))
	if err := tg.EditMessage(ctx, b, chatID, msgID, tg.FormatPaymentInstructions(target, cfg.Payment), back); err != nil {
		slog.Warn("edit payment instructions", "error", err)
	}
}
