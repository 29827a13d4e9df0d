package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/plans", bot.MatchTypePrefix, h.handlePlans)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/progress", bot.MatchTypePrefix, h.handleProgress)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/surveys", bot.MatchTypePrefix, h.handleSurveys)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/verify", bot.MatchTypePrefix, h.handleVerify)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stat", bot.MatchTypePrefix, h.handleStat)

	// Plan callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.PlanCallbackPrefix, bot.MatchTypePrefix, h.handlePlanSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.PlansPageCallbackPrefix, bot.MatchTypePrefix, h.handlePlansPage)

	// Survey callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, surveyCallbackPrefix, bot.MatchTypePrefix, h.handleSurveyComplete)

	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.NoopCallback, bot.MatchTypeExact, h.handleNoop)
}

// handleNoop is a no-op callback handler used for pagination indicators and other
// non-interactive inline buttons. It simply acknowledges the callback query.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

func answer(ctx context.Context, b *bot.Bot, update *models.Update, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// callbackMessage returns the chat and message the callback's button sits on.
func callbackMessage(update *models.Update) (int64, int, bool) {
	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return 0, 0, false
	}
	return msg.Chat.ID, msg.ID, true
}
