package domain

import (
	"github.com/shopspring/decimal"
)

type PaymentSource string

const (
	PaymentSourceForm       PaymentSource = "form"
	PaymentSourceAutoDetect PaymentSource = "auto_detect"
	PaymentSourceManual     PaymentSource = "manual"
)

// PaymentRecord is the payment metadata attached to a plan upgrade.
type PaymentRecord struct {
	Amount        decimal.Decimal
	TransactionID string
	Source        PaymentSource
}

// ExtractedDetails holds the optional fields pulled from a confirmation
// message. A nil field was not found.
type ExtractedDetails struct {
	Amount           *string `json:"amount,omitempty"`
	TransactionID    *string `json:"transactionId,omitempty"`
	Timestamp        *string `json:"timestamp,omitempty"`
	CounterpartyName *string `json:"counterpartyName,omitempty"`
}

type VerificationResult struct {
	IsValid                bool             `json:"isValid"`
	Reason                 string           `json:"message"`
	Details                ExtractedDetails `json:"details"`
	ContainsRequiredMarker bool             `json:"containsRequiredMarker"`
}

// PaymentInfo is the result of auto-detecting a pasted confirmation.
type PaymentInfo struct {
	Amount        decimal.Decimal `json:"amount"`
	TillNumber    string          `json:"tillNumber"`
	TransactionID string          `json:"transactionId"`
	PhoneNumber   string          `json:"phoneNumber"`
	Template      int             `json:"template"`
}
