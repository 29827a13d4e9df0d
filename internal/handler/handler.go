package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/service"
	"github.com/set-night/surveypay/internal/telegram"
)

// PlanCounter reports how many users sit on each plan.
type PlanCounter interface {
	CountByPlan(ctx context.Context) (map[string]int64, error)
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot      *bot.Bot
	cfg      *config.Config
	plans    *service.PlanCatalog
	progress *service.ProgressService
	upgrades *service.UpgradeService
	counter  PlanCounter
	tgLogger *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Cfg      *config.Config
	Plans    *service.PlanCatalog
	Progress *service.ProgressService
	Upgrades *service.UpgradeService
	Counter  PlanCounter
	TgLogger *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		cfg:      deps.Cfg,
		plans:    deps.Plans,
		progress: deps.Progress,
		upgrades: deps.Upgrades,
		counter:  deps.Counter,
		tgLogger: deps.TgLogger,
	}
}
