// Package mpesa interprets pasted M-Pesa confirmation messages.
package mpesa

import (
	"regexp"
	"strings"

	"github.com/set-night/surveypay/internal/domain"
)

var (
	amountRe        = regexp.MustCompile(`(?i)KSH\s?(\d{1,3}(?:,\d{3})+(?:\.\d{2})?|\d+(?:\.\d{2})?)`)
	transactionIDRe = regexp.MustCompile(`(?i)(?:TXN|TRANSACTION)\s*ID\s*:?\s*([A-Z0-9]+)`)
	timestampRe     = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{2,4}\s+\d{1,2}:\d{2}(?:\s*[AP]M)?)`)
	counterpartyRe  = regexp.MustCompile(`(?i)\b(?:PAID\s+)?TO\s+(.*?)(?:\s+ON\b|\d|$)`)
)

// ExtractDetails pulls amount, transaction id, timestamp and counterparty
// out of a confirmation message. Every field is optional.
func ExtractDetails(message string) domain.ExtractedDetails {
	var d domain.ExtractedDetails

	if m := amountRe.FindStringSubmatch(message); m != nil {
		amount := NormalizeAmount(m[1])
		d.Amount = &amount
	}
	if m := transactionIDRe.FindStringSubmatch(message); m != nil {
		id := m[1]
		d.TransactionID = &id
	}
	if m := timestampRe.FindStringSubmatch(message); m != nil {
		ts := strings.TrimSpace(m[1])
		d.Timestamp = &ts
	}
	if m := counterpartyRe.FindStringSubmatch(message); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			d.CounterpartyName = &name
		}
	}

	return d
}

// NormalizeAmount strips thousands separators and a zero fraction, so
// "1,250.00" becomes "1250" while "99.50" is kept.
func NormalizeAmount(raw string) string {
	s := strings.ReplaceAll(raw, ",", "")
	return strings.TrimSuffix(s, ".00")
}
