package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the remote user-profile row holding the plan of record.
type Profile struct {
	UserID                   string
	CurrentPlan              string
	PlanUpdatedAt            *time.Time
	LastPaymentAmount        *decimal.Decimal
	LastPaymentTransactionID *string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// PlanUpdate is what the orchestrator writes when a plan changes.
type PlanUpdate struct {
	CurrentPlan              string
	PlanUpdatedAt            time.Time
	LastPaymentAmount        *decimal.Decimal
	LastPaymentTransactionID *string
}

// UserProgress is the per-session mirror of a user's plan and earnings.
type UserProgress struct {
	CurrentPlanName       string          `json:"currentPlan"`
	SurveysCompletedToday int             `json:"surveysCompletedToday"`
	TotalEarnings         decimal.Decimal `json:"totalEarnings"`
	PendingEarnings       decimal.Decimal `json:"pendingEarnings"`
	CompletedSurveyIDs    []string        `json:"completedSurveys"`
	// CountedOn is the local day SurveysCompletedToday belongs to.
	CountedOn string `json:"countedOn,omitempty"`
}

// CountDayLayout formats UserProgress.CountedOn.
const CountDayLayout = "2006-01-02"

// Clone returns a deep copy so callers can mutate without aliasing.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.CompletedSurveyIDs = append([]string(nil), p.CompletedSurveyIDs...)
	return out
}

// HasCompleted reports whether the survey id is already recorded.
func (p UserProgress) HasCompleted(surveyID string) bool {
	for _, id := range p.CompletedSurveyIDs {
		if id == surveyID {
			return true
		}
	}
	return false
}

type Survey struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
}
