package mpesa

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/shopspring/decimal"
)

const UnknownPhone = "Unknown"

const amountPattern = `([\d,]+(?:\.\d{1,2})?)`

// paymentTemplates are tried in order; the first match wins.
var paymentTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Ksh\s?` + amountPattern + `\s+sent\s+to\s+Till\s+Number\s+(\d+)`),
	regexp.MustCompile(`(?i)Ksh\s?` + amountPattern + `\s+paid\s+to\s+(\d+)`),
	regexp.MustCompile(`(?i)Confirmed\.?\s*Ksh\s?` + amountPattern + `\s+sent\s+to\s+(\d+)`),
	regexp.MustCompile(`(?i)Ksh\s?` + amountPattern + `\s+has\s+been\s+sent\s+to\s+(\d+)`),
}

var phoneRe = regexp.MustCompile(`(?:\+?254|\b0)[17]\d{8}\b`)

// Detector recognises pasted payments aimed at one till number.
type Detector struct {
	tillNumber string
	newID      func() string
}

func NewDetector(tillNumber string) *Detector {
	return &Detector{
		tillNumber: strings.TrimSpace(tillNumber),
		newID:      func() string { return "AUTO-" + strings.ToUpper(uuid.New().String()) },
	}
}

// ExtractPaymentInfo matches the message against the known templates. A
// matching template whose till number is not ours yields no result.
func (d *Detector) ExtractPaymentInfo(message string) (domain.PaymentInfo, bool) {
	for i, re := range paymentTemplates {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}

		if m[2] != d.tillNumber {
			return domain.PaymentInfo{}, false
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return domain.PaymentInfo{}, false
		}

		phone := UnknownPhone
		if p := phoneRe.FindString(message); p != "" {
			phone = p
		}

		return domain.PaymentInfo{
			Amount:        amount.Round(0),
			TillNumber:    m[2],
			TransactionID: d.newID(),
			PhoneNumber:   phone,
			Template:      i + 1,
		}, true
	}

	return domain.PaymentInfo{}, false
}
