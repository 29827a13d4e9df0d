package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_verifications_total",
		Help: "Payment confirmations processed, by outcome",
	}, []string{"outcome"})

	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_payments_detected_total",
		Help: "Pasted payments recognised by the auto-detect templates",
	}, []string{"template"})

	Upgrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_plan_upgrades_total",
		Help: "Committed plan upgrades",
	}, []string{"plan", "source"})

	UpgradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_plan_upgrade_failures_total",
		Help: "Rejected or failed plan upgrades, by reason",
	}, []string{"reason"})

	SurveysCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_surveys_completed_total",
		Help: "Completed surveys, by plan",
	}, []string{"plan"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "surveypay_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})
)

var (
	BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypay_bot_updates_total",
		Help: "Telegram updates handled, by kind and action",
	}, []string{"kind", "action"})

	BotUpdateLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "surveypay_bot_update_duration_seconds",
		Help:    "Time spent handling a Telegram update",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	BotPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surveypay_bot_panics_total",
		Help: "Panics recovered in bot handlers",
	})
)
