package telegram

import (
	"fmt"
	"strings"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/mpesa"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a shilling amount, dropping a zero fraction.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return config.CurrencyLabel + " " + d.StringFixed(0)
	}
	return config.CurrencyLabel + " " + d.StringFixed(2)
}

func FormatPlan(t domain.PlanTier) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*", EscapeMarkdown(t.Name))
	if t.IsFree() {
		sb.WriteString(" (free)")
	} else {
		fmt.Fprintf(&sb, " · %s", FormatAmount(t.Price))
	}
	fmt.Fprintf(&sb, "\n%d surveys/day · %s per survey", t.DailySurveyQuota, FormatAmount(t.Earning()))
	fmt.Fprintf(&sb, "\nDaily up to %s · Monthly up to %s", FormatAmount(t.DailyIncomeCap), FormatAmount(t.MonthlyIncomeCap))
	fmt.Fprintf(&sb, "\nMinimum withdrawal %s", FormatAmount(t.MinimumWithdrawal))
	return sb.String()
}

func FormatPlans(tiers []domain.PlanTier, current string) string {
	var sb strings.Builder
	sb.WriteString("📋 *Plans*\n")
	for _, t := range tiers {
		sb.WriteString("\n")
		if t.Name == current {
			sb.WriteString("✅ ")
		}
		sb.WriteString(FormatPlan(t))
		sb.WriteString("\n")
	}
	sb.WriteString("\nPick a plan below to see how to pay.")
	return sb.String()
}

// FormatPaymentInstructions tells the user how to pay for tier.
func FormatPaymentInstructions(t domain.PlanTier, pay config.PaymentDetails) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 *Upgrade to %s*\n\n", EscapeMarkdown(t.Name))
	sb.WriteString("1. Open M-Pesa and choose *Lipa na M-Pesa* → *Buy Goods and Services*\n")
	fmt.Fprintf(&sb, "2. Till number: `%s`", pay.TillNumber)
	if pay.BusinessName != "" {
		fmt.Fprintf(&sb, " (%s)", EscapeMarkdown(pay.BusinessName))
	}
	fmt.Fprintf(&sb, "\n3. Amount: *%s*\n", FormatAmount(t.Price))
	sb.WriteString("4. Paste the confirmation SMS here, or send /verify followed by the message.")
	return sb.String()
}

func FormatProgress(p domain.UserProgress, tier domain.PlanTier, hasTier bool) string {
	var sb strings.Builder
	sb.WriteString("📊 *Your progress*\n\n")
	fmt.Fprintf(&sb, "Plan: *%s*\n", EscapeMarkdown(p.CurrentPlanName))
	if hasTier {
		fmt.Fprintf(&sb, "Surveys today: %d/%d\n", p.SurveysCompletedToday, tier.DailySurveyQuota)
	} else {
		fmt.Fprintf(&sb, "Surveys today: %d\n", p.SurveysCompletedToday)
	}
	fmt.Fprintf(&sb, "Pending earnings: %s\n", FormatAmount(p.PendingEarnings))
	fmt.Fprintf(&sb, "Total earnings: %s", FormatAmount(p.TotalEarnings))
	return sb.String()
}

func FormatUpgradeResult(res domain.UpgradeResult) string {
	if res.Success {
		return "🎉 " + EscapeMarkdown(res.Message)
	}
	return "❌ " + EscapeMarkdown(res.Message)
}

// FormatDetected describes an auto-detected payment and what came of it.
func FormatDetected(res domain.DetectResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 Payment of *%s* detected", FormatAmount(res.Payment.Amount))
	if res.Payment.PhoneNumber != "" && res.Payment.PhoneNumber != mpesa.UnknownPhone {
		fmt.Fprintf(&sb, " from %s", res.Payment.PhoneNumber)
	}
	sb.WriteString("\n\n")
	sb.WriteString(FormatUpgradeResult(res.Upgrade))
	return sb.String()
}
