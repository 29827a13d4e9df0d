package domain

import (
	"github.com/shopspring/decimal"
)

// PlanTier is one subscription level. Prices travel as text in the plan
// configuration document and are parsed into decimals at load time.
type PlanTier struct {
	Name              string          `json:"name"`
	DailySurveyQuota  int             `json:"dailySurveys"`
	Price             decimal.Decimal `json:"price"`
	EarningPerSurvey  string          `json:"earningPerSurvey"`
	MinimumWithdrawal decimal.Decimal `json:"minimumWithdrawal"`
	MonthlyIncomeCap  decimal.Decimal `json:"monthlyIncome"`
	DailyIncomeCap    decimal.Decimal `json:"dailyIncome"`
}

func (t PlanTier) IsFree() bool {
	return t.Price.IsZero()
}

// Earning parses EarningPerSurvey, treating junk as zero.
func (t PlanTier) Earning() decimal.Decimal {
	d, err := decimal.NewFromString(t.EarningPerSurvey)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FindPlan returns the tier with the given name.
func FindPlan(tiers []PlanTier, name string) (PlanTier, bool) {
	for _, t := range tiers {
		if t.Name == name {
			return t, true
		}
	}
	return PlanTier{}, false
}

type TransitionCheck struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type UpgradeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Plan    string `json:"plan,omitempty"`
}

// DetectResult is returned when pasted text was recognised as a payment.
type DetectResult struct {
	Payment PaymentInfo   `json:"payment"`
	Plan    string        `json:"plan,omitempty"`
	Upgrade UpgradeResult `json:"upgrade"`
}

// PlanUpgraded is broadcast after a plan change has been committed.
type PlanUpgraded struct {
	UserID  string
	NewPlan string
	Amount  *decimal.Decimal
}

type UpgradeState string

const (
	UpgradeStateIdle      UpgradeState = "idle"
	UpgradeStateVerifying UpgradeState = "verifying"
	UpgradeStateUpgrading UpgradeState = "upgrading"
	UpgradeStateUpgraded  UpgradeState = "upgraded"
	UpgradeStateFailed    UpgradeState = "failed"
)
