package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/domain"
)

// Callback data prefixes.
const (
	PlanCallbackPrefix      = "plan_"
	PlansPageCallbackPrefix = "plans_page"
	NoopCallback            = "cur"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// PaginationRow creates a pagination row with prev/next buttons.
func PaginationRow(currentPage, totalPages int, callbackPrefix string) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton

	if currentPage > 0 {
		row = append(row, InlineButton("⬅️", fmt.Sprintf("%s_%d", callbackPrefix, currentPage-1)))
	}

	row = append(row, InlineButton(
		fmt.Sprintf("%d/%d", currentPage+1, totalPages),
		NoopCallback,
	))

	if currentPage < totalPages-1 {
		row = append(row, InlineButton("➡️", fmt.Sprintf("%s_%d", callbackPrefix, currentPage+1)))
	}

	return row
}

// PlansKeyboard lists paid tiers one per row as plan_<index> buttons, where
// index is the tier's position in tiers. The current plan is marked.
func PlansKeyboard(tiers []domain.PlanTier, current string, page, perPage int) *models.InlineKeyboardMarkup {
	type entry struct {
		idx  int
		tier domain.PlanTier
	}
	var paid []entry
	for i, t := range tiers {
		if !t.IsFree() {
			paid = append(paid, entry{i, t})
		}
	}

	if perPage <= 0 {
		perPage = len(paid)
	}
	totalPages := 1
	if perPage > 0 && len(paid) > 0 {
		totalPages = (len(paid) + perPage - 1) / perPage
	}
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	var rows [][]models.InlineKeyboardButton
	start := page * perPage
	end := min(start+perPage, len(paid))
	for _, e := range paid[start:end] {
		label := fmt.Sprintf("%s · %s", e.tier.Name, FormatAmount(e.tier.Price))
		if e.tier.Name == current {
			label = "✅ " + label
		}
		rows = append(rows, ButtonRow(InlineButton(label, fmt.Sprintf("%s%d", PlanCallbackPrefix, e.idx))))
	}

	if totalPages > 1 {
		rows = append(rows, PaginationRow(page, totalPages, PlansPageCallbackPrefix))
	}

	return InlineKeyboard(rows...)
}
