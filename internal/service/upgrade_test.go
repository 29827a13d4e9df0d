package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/mpesa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paidBronze = "Confirmed. Ksh250.00 sent to Till Number 3566188 on 1/1/24 10:15 AM. SURVEYPAY. TXN ID: QAB12CD34"

func TestUpgradeService_SubmitPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.upgrades.SubmitPayment(ctx, "u1", paidBronze)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Bronze", res.Plan)
	assert.Equal(t, "Successfully upgraded to Bronze plan", res.Message)

	require.Len(t, f.profiles.updates, 1)
	upd := f.profiles.updates[0]
	assert.Equal(t, "Bronze", upd.CurrentPlan)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), upd.PlanUpdatedAt)
	require.NotNil(t, upd.LastPaymentAmount)
	assert.Equal(t, "250", upd.LastPaymentAmount.String())
	require.NotNil(t, upd.LastPaymentTransactionID)
	assert.Equal(t, "QAB12CD34", *upd.LastPaymentTransactionID)

	p, _ := f.progress.Get("u1")
	assert.Equal(t, "Bronze", p.CurrentPlanName)
	cached, _ := f.cache.get("u1")
	assert.Equal(t, "Bronze", cached.CurrentPlanName)

	require.Len(t, f.events, 1)
	assert.Equal(t, "Bronze", f.events[0].NewPlan)
	require.NotNil(t, f.events[0].Amount)
	assert.Equal(t, "250", f.events[0].Amount.String())

	assert.Equal(t, domain.UpgradeStateIdle, f.upgrades.State("u1"))
}

func TestUpgradeService_SubmitPaymentRoundsUpToNextTier(t *testing.T) {
	f := newFixture(t)

	res, err := f.upgrades.SubmitPayment(context.Background(), "u1", "Ksh300 sent to SURVEYPAY till 3566188")
	require.NoError(t, err)
	assert.Equal(t, "Silver", res.Plan)
}

func TestUpgradeService_SubmitPaymentRejections(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr error
		wantMsg string
	}{
		{"empty", "   ", domain.ErrEmptyMessage, MsgEmptyMessage},
		{"too short", "Ksh250 SURVEYPAY", domain.ErrMessageTooShort, MsgMessageTooShort},
		{"no amount marker", "Paid two hundred and fifty to SURVEYPAY", domain.ErrMissingAmountMarker, MsgMissingAmount},
		{"merchant mismatch", "Confirmed. Ksh250.00 sent to Till Number 3566188", domain.ErrMerchantMismatch, mpesa.ReasonMerchantMismatch},
		{"amount unreadable", "KSH payment to SURVEYPAY confirmed today", domain.ErrAmountNotFound, MsgAmountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.upgrades.SubmitPayment(context.Background(), "u1", tt.message)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantMsg, res.Message)

			assert.Empty(t, f.profiles.updates)
			assert.Empty(t, f.events)
			assert.Equal(t, domain.UpgradeStateIdle, f.upgrades.State("u1"))
		})
	}
}

func TestUpgradeService_SubmitPaymentNoPaidPlans(t *testing.T) {
	f := newFixture(t)
	cfg := *f.plans.Get()
	cfg.Plans = []domain.PlanTier{tier("Free", "0")}
	cfg.DefaultPlan = "Free"
	f.plans.Set(&cfg)

	res, err := f.upgrades.SubmitPayment(context.Background(), "u1", paidBronze)
	assert.ErrorIs(t, err, domain.ErrNoMatchingPlan)
	assert.Equal(t, MsgNoMatchingPlan, res.Message)
}

func TestUpgradeService_Downgrade(t *testing.T) {
	f := newFixture(t)
	f.profiles.setPlan("u1", "Gold")

	res, err := f.upgrades.SubmitPayment(context.Background(), "u1", paidBronze)
	assert.ErrorIs(t, err, domain.ErrDowngrade)
	assert.Equal(t, ReasonDowngrade, res.Message)

	assert.Empty(t, f.profiles.updates)
	p, _ := f.progress.Get("u1")
	assert.Equal(t, "Gold", p.CurrentPlanName)
}

func TestUpgradeService_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.profiles.updErr = errStore

	res, err := f.upgrades.SubmitPayment(context.Background(), "u1", paidBronze)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, res.Success)
	assert.Equal(t, MsgPersistence, res.Message)

	p, _ := f.progress.Get("u1")
	assert.Equal(t, "Free", p.CurrentPlanName, "mirror untouched when the store rejects")
	assert.Empty(t, f.events)
	assert.Equal(t, domain.UpgradeStateIdle, f.upgrades.State("u1"))
}

func TestUpgradeService_StateMachine(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var states []domain.UpgradeState
	f.upgrades.observe = func(_ string, st domain.UpgradeState) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	}

	_, err := f.upgrades.SubmitPayment(context.Background(), "u1", paidBronze)
	require.NoError(t, err)
	assert.Equal(t, []domain.UpgradeState{
		domain.UpgradeStateVerifying,
		domain.UpgradeStateUpgrading,
		domain.UpgradeStateUpgraded,
		domain.UpgradeStateIdle,
	}, states)

	states = nil
	f.profiles.updErr = errStore
	_, err = f.upgrades.SubmitPayment(context.Background(), "u2", paidBronze)
	require.Error(t, err)
	assert.Equal(t, []domain.UpgradeState{
		domain.UpgradeStateVerifying,
		domain.UpgradeStateUpgrading,
		domain.UpgradeStateFailed,
		domain.UpgradeStateIdle,
	}, states)

	states = nil
	_, err = f.upgrades.SubmitPayment(context.Background(), "u3", strings.Replace(paidBronze, "SURVEYPAY", "OTHER", 1))
	require.Error(t, err)
	assert.Equal(t, []domain.UpgradeState{
		domain.UpgradeStateVerifying,
		domain.UpgradeStateIdle,
	}, states, "verification failures return straight to idle")
}

func TestUpgradeService_RejectsConcurrentSubmission(t *testing.T) {
	f := newFixture(t)

	var nestedErr error
	f.upgrades.observe = func(userID string, st domain.UpgradeState) {
		if st == domain.UpgradeStateVerifying && nestedErr == nil {
			_, nestedErr = f.upgrades.SubmitPayment(context.Background(), userID, paidBronze)
		}
	}

	_, err := f.upgrades.SubmitPayment(context.Background(), "u1", paidBronze)
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, domain.ErrUpgradeInProgress)
}

func TestUpgradeService_CancelledDuringVerification(t *testing.T) {
	f := newFixture(t)
	f.upgrades.verifyDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.upgrades.SubmitPayment(ctx, "u1", paidBronze)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, MsgUpgradeFailed, res.Message)
	assert.Equal(t, domain.UpgradeStateIdle, f.upgrades.State("u1"))
	assert.Empty(t, f.profiles.updates)
}

func TestUpgradeService_ApplyUpgradeRecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.profiles.panicOn = true

	var res domain.UpgradeResult
	assert.NotPanics(t, func() {
		res = f.upgrades.ApplyUpgrade(context.Background(), "u1", "Gold", nil)
	})
	assert.False(t, res.Success)
	assert.Equal(t, MsgUpgradeFailed, res.Message)
}

func TestUpgradeService_ApplyUpgradeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.upgrades.ApplyUpgrade(ctx, "u1", "Diamond", nil)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonInvalidPlan, res.Message)

	res = f.upgrades.ApplyUpgrade(ctx, "u1", "Gold", nil)
	require.True(t, res.Success)

	res = f.upgrades.ApplyUpgrade(ctx, "u1", "Gold", nil)
	assert.True(t, res.Success, "same tier is allowed")

	res = f.upgrades.ApplyUpgrade(ctx, "u1", "Silver", nil)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonDowngrade, res.Message)

	require.Len(t, f.events, 2)
	assert.Nil(t, f.events[0].Amount)
}

func TestUpgradeService_ApplyUpgradeFromDanglingPlan(t *testing.T) {
	f := newFixture(t)
	f.profiles.setPlan("u1", "Retired")

	res := f.upgrades.ApplyUpgrade(context.Background(), "u1", "Bronze", nil)
	assert.True(t, res.Success)
}

func TestUpgradeService_DetectPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, ok := f.upgrades.DetectPayment(ctx, "u1", "Ksh500 paid to 3566188")
	require.True(t, ok)
	assert.Equal(t, 2, res.Payment.Template)
	assert.Equal(t, "Silver", res.Plan)
	assert.True(t, res.Upgrade.Success)

	require.Len(t, f.profiles.updates, 1)
	require.NotNil(t, f.profiles.updates[0].LastPaymentTransactionID)
	assert.True(t, strings.HasPrefix(*f.profiles.updates[0].LastPaymentTransactionID, "AUTO-"))

	_, ok = f.upgrades.DetectPayment(ctx, "u1", "Ksh500 paid to 1234567")
	assert.False(t, ok)
	assert.Len(t, f.profiles.updates, 1)
}

func TestUpgradeService_DetectPaymentFromHTML(t *testing.T) {
	f := newFixture(t)

	res, ok := f.upgrades.DetectPayment(context.Background(), "u1", "<p>Ksh<b>1,000</b> has been sent to 3566188</p>")
	require.True(t, ok)
	assert.Equal(t, "Gold", res.Plan)
}

func TestUpgradeService_DetectPaymentDowngrade(t *testing.T) {
	f := newFixture(t)
	f.profiles.setPlan("u1", "Platinum")

	res, ok := f.upgrades.DetectPayment(context.Background(), "u1", "Ksh500 paid to 3566188")
	require.True(t, ok)
	assert.False(t, res.Upgrade.Success)
	assert.Equal(t, ReasonDowngrade, res.Upgrade.Message)
}

func TestUpgradeService_Verify(t *testing.T) {
	f := newFixture(t)

	res := f.upgrades.Verify(paidBronze)
	assert.True(t, res.IsValid)

	res = f.upgrades.Verify("hello")
	assert.False(t, res.IsValid)
}
