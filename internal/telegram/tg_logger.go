package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
)

// TelegramLogger posts operator events to forum topics of a log chat.
type TelegramLogger struct {
	bot MessageSender
	cfg *config.Config
	now func() time.Time
}

func NewTelegramLogger(b MessageSender, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg, now: time.Now}
}

type LogType string

const (
	LogTypeError           LogType = "error"
	LogTypeRegistration    LogType = "registration"
	LogTypePlanUpgrade     LogType = "planUpgrade"
	LogTypeRejectedPayment LogType = "rejectedPayment"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       models.ParseModeMarkdownV1,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), l.stamp())
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogRegistration(userID, name, username string) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%s`\n*Name:* %s", userID, EscapeMarkdown(name))
	if username != "" {
		msg += fmt.Sprintf("\n*Username:* @%s", EscapeMarkdown(username))
	}
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) LogPlanUpgrade(ev domain.PlanUpgraded) {
	msg := fmt.Sprintf("⭐ *Plan Upgrade*\n\n*User:* `%s`\n*Plan:* %s", ev.UserID, EscapeMarkdown(ev.NewPlan))
	if ev.Amount != nil {
		msg += fmt.Sprintf("\n*Amount:* %s", FormatAmount(*ev.Amount))
	}
	msg += fmt.Sprintf("\n*Time:* %s", l.stamp())
	l.Log(LogTypePlanUpgrade, msg)
}

func (l *TelegramLogger) LogRejectedPayment(userID, reason string) {
	msg := fmt.Sprintf("🚫 *Payment Rejected*\n\n*User:* `%s`\n*Reason:* %s\n*Time:* %s",
		userID, EscapeMarkdown(reason), l.stamp())
	l.Log(LogTypeRejectedPayment, msg)
}

// OnPlanUpgraded is a notifier subscriber. Delivery to Telegram happens off
// the publisher's goroutine.
func (l *TelegramLogger) OnPlanUpgraded(ev domain.PlanUpgraded) {
	go l.LogPlanUpgrade(ev)
}

func (l *TelegramLogger) stamp() string {
	return l.now().Format("2006-01-02 15:04:05")
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypePlanUpgrade:
		return l.cfg.LogTopicPlanUpgrade
	case LogTypeRejectedPayment:
		return l.cfg.LogTopicRejected
	default:
		return 0
	}
}
