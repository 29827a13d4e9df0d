package service

import (
	"sort"

	"github.com/set-night/surveypay/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ReasonInvalidPlan = "Invalid plan selection"
	ReasonDowngrade   = "Cannot downgrade to a lower plan"
)

// ResolveByAmount maps a paid amount to a paid tier: the exact price if one
// matches, otherwise the cheapest tier priced above the amount, otherwise the
// most expensive tier. Tiers with equal prices keep their configured order.
func ResolveByAmount(amount decimal.Decimal, tiers []domain.PlanTier) (domain.PlanTier, bool) {
	paid := make([]domain.PlanTier, 0, len(tiers))
	for _, t := range tiers {
		if t.Price.IsPositive() {
			paid = append(paid, t)
		}
	}
	if len(paid) == 0 {
		return domain.PlanTier{}, false
	}

	sort.SliceStable(paid, func(i, j int) bool {
		return paid[i].Price.LessThan(paid[j].Price)
	})

	for _, t := range paid {
		if t.Price.Equal(amount) {
			return t, true
		}
	}
	for _, t := range paid {
		if t.Price.GreaterThanOrEqual(amount) {
			return t, true
		}
	}
	return paid[len(paid)-1], true
}

// ValidateTransition rejects unknown plans and downgrades. Moving to the same
// plan is allowed.
func ValidateTransition(current, target string, tiers []domain.PlanTier) domain.TransitionCheck {
	from, ok := domain.FindPlan(tiers, current)
	if !ok {
		return domain.TransitionCheck{Reason: ReasonInvalidPlan}
	}
	to, ok := domain.FindPlan(tiers, target)
	if !ok {
		return domain.TransitionCheck{Reason: ReasonInvalidPlan}
	}
	if to.Price.LessThan(from.Price) {
		return domain.TransitionCheck{Reason: ReasonDowngrade}
	}
	return domain.TransitionCheck{OK: true}
}
