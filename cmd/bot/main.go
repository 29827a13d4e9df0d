package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	surveypay "github.com/set-night/surveypay"
	"github.com/set-night/surveypay/internal/api"
	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/handler"
	"github.com/set-night/surveypay/internal/jobs"
	"github.com/set-night/surveypay/internal/middleware"
	"github.com/set-night/surveypay/internal/repository"
	"github.com/set-night/surveypay/internal/service"
	"github.com/set-night/surveypay/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	planCfg, err := config.LoadPlans(cfg.PlansConfigPath)
	if err != nil {
		slog.Error("failed to load plans", "error", err)
		os.Exit(1)
	}
	surveyCfg, err := config.LoadSurveys(cfg.SurveysConfigPath)
	if err != nil {
		slog.Error("failed to load surveys", "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"plans", len(planCfg.Plans),
		"surveys", len(surveyCfg.Surveys),
		"till", planCfg.Payment.TillNumber,
		"admins", cfg.AdminIDsString(),
		"operator_api", cfg.AdminAPIToken != "",
	)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(surveypay.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	version, err := repository.Migrate(cfg.DatabaseURL, migrationsFS)
	if err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("profile schema ready", "version", version)

	// Open local cache
	cacheDB, err := repository.OpenCache(cfg.CachePath)
	if err != nil {
		slog.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer cacheDB.Close()

	profiles := repository.NewProfileRepository(pool)
	cache := repository.NewProgressCache(cacheDB)

	// Initialize services
	plans := service.NewPlanCatalog(planCfg, cfg.PlansReloadEvery, func() (*config.PlanConfig, error) {
		return config.LoadPlans(cfg.PlansConfigPath)
	})
	notifier := service.NewNotifier()
	progress := service.NewProgressService(cache, profiles, plans, surveyCfg, cfg.Location())
	upgrades := service.NewUpgradeService(cfg, plans, profiles, progress, notifier)

	notifier.Subscribe(func(ev domain.PlanUpgraded) {
		slog.Info("plan upgraded", "user_id", ev.UserID, "plan", ev.NewPlan)
	})

	// Handler pointer for use in default handler closure
	var h *handler.Handler
	var tgLogger *telegram.TelegramLogger

	limiter := middleware.NewLimiter(config.RateLimitRegular, config.RateLimitWindow)

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(func(err error) {
				if tgLogger != nil {
					tgLogger.LogError(err, "bot handler")
				}
			}),
			middleware.Logging(),
			middleware.RateLimit(limiter),
			middleware.UserLoader(progress, profiles, plans.DefaultPlan, cfg, func(userID, name, username string) {
				if tgLogger != nil {
					tgLogger.LogRegistration(userID, name, username)
				}
			}),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			// Skip commands
			if len(update.Message.Text) == 0 || update.Message.Text[0] == '/' {
				return
			}
			if update.Message.Chat.Type == "private" {
				h.HandleTextPrivate(ctx, b, update)
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	// Initialize telegram logger
	tgLogger = telegram.NewTelegramLogger(b, cfg)
	notifier.Subscribe(tgLogger.OnPlanUpgraded)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:      b,
		Cfg:      cfg,
		Plans:    plans,
		Progress: progress,
		Upgrades: upgrades,
		Counter:  profiles,
		TgLogger: tgLogger,
	})

	// Register all handlers
	h.Register()

	// Start background jobs
	scheduler := jobs.NewScheduler(cfg.Location(), cfg.DailyResetSpec, progress)
	scheduler.Every("rate limit sweep", config.RateLimitWindow, func(context.Context) {
		limiter.Sweep()
	})
	scheduler.Every("session eviction", cfg.SessionIdleTTL, func(context.Context) {
		if n := progress.EvictIdle(cfg.SessionIdleTTL); n > 0 {
			slog.Info("evicted idle sessions", "count", n)
		}
	})
	if cfg.PlansReloadEvery > 0 {
		scheduler.Every("plan refresh", cfg.PlansReloadEvery, func(context.Context) {
			plans.Get()
		})
	}
	if err := scheduler.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Start HTTP API
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(plans, progress, upgrades, pool.Ping, cfg.AdminAPIToken),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	slog.Info("bot stopped gracefully")
}
