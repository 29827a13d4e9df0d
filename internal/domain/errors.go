package domain

import "errors"

var (
	ErrEmptyMessage        = errors.New("empty message")
	ErrInvalidMessage      = errors.New("invalid message format")
	ErrMessageTooShort     = errors.New("message too short")
	ErrMissingAmountMarker = errors.New("message has no KSH amount")
	ErrMerchantMismatch    = errors.New("merchant verification failed")
	ErrAmountNotFound      = errors.New("payment amount not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNoMatchingPlan      = errors.New("no plan matches amount")
	ErrInvalidPlan         = errors.New("invalid plan selection")
	ErrDowngrade           = errors.New("cannot downgrade to a lower plan")
	ErrPersistence         = errors.New("profile update rejected")
	ErrUpgradeInProgress   = errors.New("upgrade already in progress")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrCacheMiss           = errors.New("cache entry not found")
	ErrSurveyNotFound      = errors.New("survey not found")
	ErrSurveyAlreadyDone   = errors.New("survey already completed")
	ErrDailyQuotaReached   = errors.New("daily survey quota reached")
)
