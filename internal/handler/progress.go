package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/middleware"
	tg "github.com/set-night/surveypay/internal/telegram"
)

const surveyCallbackPrefix = "survey_"

func (h *Handler) handleProgress(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}

	tier, ok := h.progress.Limits(session.UserID)
	if err := tg.SendLongMessage(ctx, b, update.Message.Chat.ID, tg.FormatProgress(session.Progress, tier, ok), nil); err != nil {
		slog.Error("send progress", "error", err)
	}
}

func (h *Handler) handleSurveys(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil {
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, s := range h.progress.Surveys() {
		if session.Progress.HasCompleted(s.ID) {
			continue
		}
		label := fmt.Sprintf("%s · %d min", s.Title, s.DurationMinutes)
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, surveyCallbackPrefix+s.ID)))
	}

	text := "📝 *Available surveys*\n\nTap a survey once you have finished it."
	if len(rows) == 0 {
		text = "✅ You have completed every available survey."
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleSurveyComplete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	session := middleware.GetSession(ctx)
	if session == nil {
		answer(ctx, b, update, "", false)
		return
	}

	surveyID := strings.TrimPrefix(update.CallbackQuery.Data, surveyCallbackPrefix)
	p, err := h.progress.CompleteSurvey(ctx, session.UserID, surveyID)
	switch {
	case errors.Is(err, domain.ErrDailyQuotaReached):
		answer(ctx, b, update, "Daily survey limit reached. Upgrade your plan with /plans for more.", true)
		return
	case errors.Is(err, domain.ErrSurveyAlreadyDone):
		answer(ctx, b, update, "You already completed this survey", false)
		return
	case errors.Is(err, domain.ErrSurveyNotFound):
		answer(ctx, b, update, "Survey not found", false)
		return
	case err != nil:
		slog.Error("complete survey", "error", err, "user_id", session.UserID)
		answer(ctx, b, update, "Something went wrong. Please try again.", true)
		return
	}

	answer(ctx, b, update, "Survey completed 🎉", false)

	if chatID, _, ok := callbackMessage(update); ok {
		tier, hasTier := h.progress.Limits(session.UserID)
		if err := tg.SendLongMessage(ctx, b, chatID, tg.FormatProgress(p, tier, hasTier), nil); err != nil {
			slog.Error("send progress", "error", err)
		}
	}
}
