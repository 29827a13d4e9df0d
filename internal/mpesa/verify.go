package mpesa

import (
	"strings"
	"unicode/utf8"

	"github.com/set-night/surveypay/internal/domain"
)

const (
	ReasonInvalidFormat    = "Invalid message format"
	ReasonMerchantMismatch = "merchant verification failed"
	ReasonVerified         = "Payment verified"
)

// Verifier gates confirmation messages on a merchant marker.
type Verifier struct {
	marker string
}

func NewVerifier(marker string) *Verifier {
	return &Verifier{marker: strings.ToUpper(strings.TrimSpace(marker))}
}

// Verify checks the message for the merchant marker (case-insensitive) and,
// when present, extracts details from the original text.
func (v *Verifier) Verify(message string) domain.VerificationResult {
	if strings.TrimSpace(message) == "" || !utf8.ValidString(message) {
		return domain.VerificationResult{Reason: ReasonInvalidFormat}
	}

	normalized := strings.ToUpper(strings.TrimSpace(message))
	if v.marker == "" || !strings.Contains(normalized, v.marker) {
		return domain.VerificationResult{Reason: ReasonMerchantMismatch}
	}

	return domain.VerificationResult{
		IsValid:                true,
		Reason:                 ReasonVerified,
		Details:                ExtractDetails(message),
		ContainsRequiredMarker: true,
	}
}
