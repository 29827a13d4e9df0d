package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/service"
)

const maxBodyBytes = 64 << 10

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	plans    *service.PlanCatalog
	progress *service.ProgressService
	upgrades *service.UpgradeService
	health   HealthFunc
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type messageRequest struct {
	Message string `json:"message"`
}

// upgradeStatus maps orchestration errors to HTTP status codes.
func upgradeStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrUpgradeInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, domain.ErrMessageTooShort),
		errors.Is(err, domain.ErrMissingAmountMarker),
		errors.Is(err, domain.ErrMerchantMismatch),
		errors.Is(err, domain.ErrAmountNotFound),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNoMatchingPlan),
		errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrDowngrade):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Plans ---

func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	cfg := h.plans.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"surveyPlans":         cfg.Tiers(),
		"mpesaPaymentDetails": cfg.Payment,
		"defaultPlan":         cfg.DefaultPlan,
	})
}

func (h *Handlers) ResolvePlan(w http.ResponseWriter, r *http.Request) {
	raw := strings.ReplaceAll(r.URL.Query().Get("amount"), ",", "")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	tier, ok := service.ResolveByAmount(amount, h.plans.Tiers())
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoMatchingPlan.Error())
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

func (h *Handlers) ValidateTransition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current"`
		Target  string `json:"target"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, service.ValidateTransition(req.Current, req.Target, h.plans.Tiers()))
}

// --- Stateless payment checks ---

func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.upgrades.Verify(req.Message))
}

func (h *Handlers) PreviewDetect(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info, ok := h.upgrades.Detect(req.Message)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"detected": false})
		return
	}

	resp := map[string]any{"detected": true, "payment": info}
	if tier, ok := service.ResolveByAmount(info.Amount, h.plans.Tiers()); ok {
		resp["plan"] = tier.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Per-user flows ---

func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p, err := h.progress.Load(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := map[string]any{
		"userProgress": p,
		"upgradeState": h.upgrades.State(userID),
	}
	if tier, ok := h.progress.Limits(userID); ok {
		resp["plan"] = tier
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.upgrades.SubmitPayment(r.Context(), chi.URLParam(r, "userID"), req.Message)
	writeJSON(w, upgradeStatus(err), res)
}

func (h *Handlers) DetectPayment(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, ok := h.upgrades.DetectPayment(r.Context(), chi.URLParam(r, "userID"), req.Message)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "no payment to the configured till detected")
		return
	}

	status := http.StatusOK
	if !res.Upgrade.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *Handlers) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan          string `json:"plan"`
		Amount        string `json:"amount,omitempty"`
		TransactionID string `json:"transactionId,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var payment *domain.PaymentRecord
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "amount must be a number")
			return
		}
		payment = &domain.PaymentRecord{
			Amount:        amount,
			TransactionID: req.TransactionID,
			Source:        domain.PaymentSourceManual,
		}
	}

	res := h.upgrades.ApplyUpgrade(r.Context(), chi.URLParam(r, "userID"), req.Plan, payment)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *Handlers) CompleteSurvey(w http.ResponseWriter, r *http.Request) {
	p, err := h.progress.CompleteSurvey(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "surveyID"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"userProgress": p})
	case errors.Is(err, domain.ErrSurveyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSurveyAlreadyDone):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDailyQuotaReached):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		slog.Error("complete survey", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
