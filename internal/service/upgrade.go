package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/metrics"
	"github.com/set-night/surveypay/internal/mpesa"
	"github.com/shopspring/decimal"
)

const (
	MsgEmptyMessage     = "Please paste your M-Pesa confirmation message"
	MsgMessageTooShort  = "That message is too short to be an M-Pesa confirmation"
	MsgMissingAmount    = "The message does not contain a KSH amount"
	MsgAmountNotFound   = "Could not read the payment amount from the message"
	MsgNoMatchingPlan   = "No plan matches the amount paid"
	MsgPersistence      = "Could not save your new plan. Please try again."
	MsgUpgradeInProcess = "An upgrade is already being processed"
	MsgUpgradeFailed    = "Something went wrong while upgrading your plan. Please try again."
)

var errUpgradeFailed = errors.New("upgrade failed")

// UpgradeService verifies payments and commits plan changes. It keeps a
// per-user state machine: Idle, Verifying, then Upgrading and Upgraded or
// Failed, then back to Idle.
type UpgradeService struct {
	plans    *PlanCatalog
	profiles ProfileStore
	progress *ProgressService
	notifier *Notifier
	verifier *mpesa.Verifier

	verifyDelay      time.Duration
	minMessageLength int
	now              func() time.Time

	mu      sync.Mutex
	states  map[string]domain.UpgradeState
	observe func(userID string, st domain.UpgradeState)
}

func NewUpgradeService(cfg *config.Config, plans *PlanCatalog, profiles ProfileStore, progress *ProgressService, notifier *Notifier) *UpgradeService {
	return &UpgradeService{
		plans:            plans,
		profiles:         profiles,
		progress:         progress,
		notifier:         notifier,
		verifier:         mpesa.NewVerifier(cfg.MerchantMarker),
		verifyDelay:      cfg.VerifyDelay,
		minMessageLength: cfg.MinMessageLength,
		now:              time.Now,
		states:           make(map[string]domain.UpgradeState),
	}
}

// Verify runs the merchant check alone, with no side effects.
func (s *UpgradeService) Verify(message string) domain.VerificationResult {
	return s.verifier.Verify(mpesa.PlainText(message))
}

// State returns the user's position in the upgrade state machine.
func (s *UpgradeService) State(userID string) domain.UpgradeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return st
	}
	return domain.UpgradeStateIdle
}

// SubmitPayment runs the verification-form flow for a pasted confirmation
// message. The returned error wraps a domain sentinel; the result carries
// the user-facing message either way.
func (s *UpgradeService) SubmitPayment(ctx context.Context, userID, message string) (domain.UpgradeResult, error) {
	message = mpesa.PlainText(message)

	if err := s.checkInput(message); err != nil {
		metrics.Verifications.WithLabelValues("malformed").Inc()
		return failed(inputMessage(err)), err
	}

	if err := s.begin(userID); err != nil {
		return failed(MsgUpgradeInProcess), err
	}
	defer s.setState(userID, domain.UpgradeStateIdle)

	if err := s.wait(ctx); err != nil {
		return failed(MsgUpgradeFailed), fmt.Errorf("verify payment: %w", err)
	}

	res := s.verifier.Verify(message)
	if !res.IsValid {
		err := domain.ErrMerchantMismatch
		if res.Reason == mpesa.ReasonInvalidFormat {
			err = domain.ErrInvalidMessage
		}
		metrics.Verifications.WithLabelValues("rejected").Inc()
		slog.Info("payment rejected", "user_id", userID, "reason", res.Reason)
		return failed(res.Reason), err
	}

	if res.Details.Amount == nil {
		metrics.Verifications.WithLabelValues("no_amount").Inc()
		return failed(MsgAmountNotFound), domain.ErrAmountNotFound
	}
	amount, err := decimal.NewFromString(*res.Details.Amount)
	if err != nil {
		metrics.Verifications.WithLabelValues("no_amount").Inc()
		return failed(MsgAmountNotFound), fmt.Errorf("%w: %q", domain.ErrInvalidAmount, *res.Details.Amount)
	}

	tier, ok := ResolveByAmount(amount, s.plans.Tiers())
	if !ok {
		metrics.Verifications.WithLabelValues("no_plan").Inc()
		return failed(MsgNoMatchingPlan), domain.ErrNoMatchingPlan
	}
	metrics.Verifications.WithLabelValues("verified").Inc()

	payment := &domain.PaymentRecord{Amount: amount, Source: domain.PaymentSourceForm}
	if res.Details.TransactionID != nil {
		payment.TransactionID = *res.Details.TransactionID
	}

	return s.upgrade(ctx, userID, tier.Name, payment)
}

// DetectPayment runs the auto-detect flow on arbitrary pasted text. The bool
// is false when the text is not a payment to our till.
func (s *UpgradeService) DetectPayment(ctx context.Context, userID, text string) (domain.DetectResult, bool) {
	info, ok := s.Detect(text)
	if !ok {
		return domain.DetectResult{}, false
	}

	out := domain.DetectResult{Payment: info}

	tier, ok := ResolveByAmount(info.Amount, s.plans.Tiers())
	if !ok {
		out.Upgrade = failed(MsgNoMatchingPlan)
		return out, true
	}
	out.Plan = tier.Name

	if err := s.begin(userID); err != nil {
		out.Upgrade = failed(MsgUpgradeInProcess)
		return out, true
	}
	defer s.setState(userID, domain.UpgradeStateIdle)

	payment := &domain.PaymentRecord{
		Amount:        info.Amount,
		TransactionID: info.TransactionID,
		Source:        domain.PaymentSourceAutoDetect,
	}
	out.Upgrade, _ = s.upgrade(ctx, userID, tier.Name, payment)
	return out, true
}

// Detect recognises a pasted payment to the configured till without acting
// on it.
func (s *UpgradeService) Detect(text string) (domain.PaymentInfo, bool) {
	info, ok := mpesa.NewDetector(s.plans.TillNumber()).ExtractPaymentInfo(mpesa.PlainText(text))
	if ok {
		metrics.Detections.WithLabelValues(strconv.Itoa(info.Template)).Inc()
	}
	return info, ok
}

// ApplyUpgrade validates and commits a move to target. It never panics;
// unexpected failures come back as a generic failure result.
func (s *UpgradeService) ApplyUpgrade(ctx context.Context, userID, target string, payment *domain.PaymentRecord) (res domain.UpgradeResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in apply upgrade",
				"panic", r,
				"user_id", userID,
				"stack", string(debug.Stack()),
			)
			metrics.UpgradeFailures.WithLabelValues("panic").Inc()
			res = failed(MsgUpgradeFailed)
		}
	}()

	res, err := s.applyUpgrade(ctx, userID, target, payment)
	if err != nil {
		slog.Warn("plan upgrade failed", "error", err, "user_id", userID, "target", target)
	}
	return res
}

func (s *UpgradeService) applyUpgrade(ctx context.Context, userID, target string, payment *domain.PaymentRecord) (domain.UpgradeResult, error) {
	progress, err := s.progress.Load(ctx, userID)
	if err != nil {
		metrics.UpgradeFailures.WithLabelValues("load").Inc()
		return failed(MsgUpgradeFailed), fmt.Errorf("load progress: %w", err)
	}

	tiers := s.plans.Tiers()
	current := progress.CurrentPlanName
	if _, ok := domain.FindPlan(tiers, current); !ok {
		current = target
	}

	check := ValidateTransition(current, target, tiers)
	if !check.OK {
		err := domain.ErrInvalidPlan
		if check.Reason == ReasonDowngrade {
			err = domain.ErrDowngrade
		}
		metrics.UpgradeFailures.WithLabelValues(failureLabel(err)).Inc()
		return failed(check.Reason), err
	}

	upd := domain.PlanUpdate{CurrentPlan: target, PlanUpdatedAt: s.now().UTC()}
	if payment != nil {
		amount := payment.Amount
		upd.LastPaymentAmount = &amount
		if payment.TransactionID != "" {
			txID := payment.TransactionID
			upd.LastPaymentTransactionID = &txID
		}
	}

	if err := s.profiles.UpdatePlan(ctx, userID, upd); err != nil {
		metrics.UpgradeFailures.WithLabelValues("persistence").Inc()
		return failed(MsgPersistence), fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	if _, err := s.progress.SetPlan(ctx, userID, target); err != nil {
		metrics.UpgradeFailures.WithLabelValues("mirror").Inc()
		return failed(MsgUpgradeFailed), fmt.Errorf("update progress: %w", err)
	}

	source := domain.PaymentSourceManual
	if payment != nil {
		source = payment.Source
	}
	metrics.Upgrades.WithLabelValues(target, string(source)).Inc()
	slog.Info("upgrade persisted", "user_id", userID, "plan", target, "source", source)

	s.notifier.Publish(domain.PlanUpgraded{UserID: userID, NewPlan: target, Amount: upd.LastPaymentAmount})

	return domain.UpgradeResult{
		Success: true,
		Message: fmt.Sprintf("Successfully upgraded to %s plan", target),
		Plan:    target,
	}, nil
}

// upgrade moves an already verified request through Upgrading to Upgraded or
// Failed. The caller owns the return to Idle.
func (s *UpgradeService) upgrade(ctx context.Context, userID, target string, payment *domain.PaymentRecord) (domain.UpgradeResult, error) {
	s.setState(userID, domain.UpgradeStateUpgrading)

	res := s.ApplyUpgrade(ctx, userID, target, payment)
	if !res.Success {
		s.setState(userID, domain.UpgradeStateFailed)
		return res, errorFor(res.Message)
	}
	s.setState(userID, domain.UpgradeStateUpgraded)
	return res, nil
}

func (s *UpgradeService) checkInput(message string) error {
	trimmed := strings.TrimSpace(message)
	switch {
	case trimmed == "":
		return domain.ErrEmptyMessage
	case len([]rune(trimmed)) < s.minMessageLength:
		return domain.ErrMessageTooShort
	case !strings.Contains(strings.ToUpper(trimmed), "KSH"):
		return domain.ErrMissingAmountMarker
	}
	return nil
}

func (s *UpgradeService) begin(userID string) error {
	s.mu.Lock()
	switch s.states[userID] {
	case domain.UpgradeStateVerifying, domain.UpgradeStateUpgrading:
		s.mu.Unlock()
		return domain.ErrUpgradeInProgress
	}
	s.states[userID] = domain.UpgradeStateVerifying
	observe := s.observe
	s.mu.Unlock()

	if observe != nil {
		observe(userID, domain.UpgradeStateVerifying)
	}
	return nil
}

func (s *UpgradeService) setState(userID string, st domain.UpgradeState) {
	s.mu.Lock()
	if st == domain.UpgradeStateIdle {
		delete(s.states, userID)
	} else {
		s.states[userID] = st
	}
	observe := s.observe
	s.mu.Unlock()

	if observe != nil {
		observe(userID, st)
	}
}

func (s *UpgradeService) wait(ctx context.Context) error {
	if s.verifyDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.verifyDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func failed(msg string) domain.UpgradeResult {
	return domain.UpgradeResult{Message: msg}
}

func inputMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return MsgEmptyMessage
	case errors.Is(err, domain.ErrMessageTooShort):
		return MsgMessageTooShort
	default:
		return MsgMissingAmount
	}
}

// errorFor maps a failed result message back to its sentinel.
func errorFor(msg string) error {
	switch msg {
	case ReasonInvalidPlan:
		return domain.ErrInvalidPlan
	case ReasonDowngrade:
		return domain.ErrDowngrade
	case MsgPersistence:
		return domain.ErrPersistence
	default:
		return errUpgradeFailed
	}
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrDowngrade):
		return "downgrade"
	case errors.Is(err, domain.ErrInvalidPlan):
		return "invalid_plan"
	default:
		return "other"
	}
}
