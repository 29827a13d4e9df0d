package middleware

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// updateInfo is what the logging and recovery middlewares report about an
// update.
type updateInfo struct {
	kind   string
	action string
	chatID int64
	userID int64
}

func describeUpdate(update *models.Update) updateInfo {
	info := updateInfo{kind: "other", action: "none"}

	switch {
	case update.Message != nil:
		info.kind = "message"
		info.chatID = update.Message.Chat.ID
		if update.Message.From != nil {
			info.userID = update.Message.From.ID
		}
		info.action = messageAction(update.Message.Text)
	case update.CallbackQuery != nil:
		info.kind = "callback"
		if update.CallbackQuery.Message.Message != nil {
			info.chatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		info.userID = update.CallbackQuery.From.ID
		info.action = callbackAction(update.CallbackQuery.Data)
	}

	return info
}

// messageAction is the command name for commands and "text" otherwise.
func messageAction(text string) string {
	if !strings.HasPrefix(text, "/") {
		return "text"
	}
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return cmd
}

// callbackAction drops the per-item suffix so plan_3 and plan_4 share a label.
func callbackAction(data string) string {
	if i := strings.LastIndexByte(data, '_'); i > 0 {
		return data[:i+1]
	}
	return data
}
