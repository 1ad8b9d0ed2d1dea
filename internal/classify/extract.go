package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"khata/internal/models"
)

// ParsedFields are the structured values extracted from one message body.
// They feed the decision tree and the trace; extraction failures leave zero
// values rather than erroring.
type ParsedFields struct {
	Amount          decimal.Decimal
	HasAmount       bool
	Direction       models.Direction
	AccountType     models.AccountTypeGuess
	RawCounterparty string
}

var amountPattern = regexp.MustCompile(`(?i)(?:rs\.?|inr)\s*\.?\s*([\d,]+(?:\.\d{1,2})?)`)

// counterpartyPatterns are tried in order against the raw (not lower-cased)
// body. Each mirrors a phrasing used by a family of bank senders.
var counterpartyPatterns = []*regexp.Regexp{
	// "at MERCHANT on/for/using ..."
	regexp.MustCompile(`(?i)\s+at\s+([A-Za-z0-9\s&.\-*]{3,25}?)(?:\s+(?:on|for|using|via|worth|with)\b|$)`),
	// "Info: MERCHANT*"
	regexp.MustCompile(`(?i)info:\s*([A-Za-z0-9\s&.\-*]{3,25}?)(?:\*|$)`),
	// UPI "paid to VPA@provider" / "to VPA@provider"
	regexp.MustCompile(`(?i)(?:paid\s+)?to\s+([A-Za-z0-9._-]+?)@`),
	// "To MERCHANT On ..."
	regexp.MustCompile(`(?i)\s+to\s+([A-Za-z0-9\s&.\-*]{3,25}?)\s+on\s+`),
	// Axis style "IST MERCHANT Avl Limit"
	regexp.MustCompile(`(?i)\s+ist\s+([A-Za-z0-9\s&.\-*]+?)\s+avl limit`),
}

// ExtractAmount pulls the first "Rs"/"INR"-prefixed amount out of the body.
func ExtractAmount(body string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(body)
	if m == nil {
		return decimal.Zero, false
	}
	amt, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return amt, true
}

// ExtractCounterparty pulls a raw counterparty token out of the body, or ""
// when no pattern applies. Tokens starting with a digit or containing a
// slash are rejected as dates/amounts misread as names.
func ExtractCounterparty(body string) string {
	flat := strings.Join(strings.Fields(body), " ")
	for _, pat := range counterpartyPatterns {
		m := pat.FindStringSubmatch(flat)
		if m == nil {
			continue
		}
		token := strings.TrimSpace(m[1])
		if len(token) < 3 || strings.Contains(token, "/") {
			continue
		}
		if token[0] >= '0' && token[0] <= '9' {
			continue
		}
		return token
	}
	return ""
}

// GuessAccountType infers the destination account kind from the lower-cased
// body. The credit-card levels of the decision tree key off this guess.
func GuessAccountType(body string) models.AccountTypeGuess {
	switch {
	case strings.Contains(body, "credit card") || strings.Contains(body, "creditcard"):
		return models.AccountGuessCreditCard
	case strings.Contains(body, "wallet"):
		return models.AccountGuessWallet
	case strings.Contains(body, "a/c") || strings.Contains(body, "acct") ||
		strings.Contains(body, "account") || strings.Contains(body, "bank"):
		return models.AccountGuessBank
	default:
		return models.AccountGuessUnknown
	}
}

// ContentHash returns the 16-hex-char dedup digest of a message body.
// The body is hashed as-is; two messages differing only in timestamp or
// sender produce the same hash on purpose.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:8])
}

// Parse extracts all structured fields from one message body.
func Parse(body string) ParsedFields {
	lower := strings.ToLower(body)
	fields := ParsedFields{
		Direction:       DetectDirection(lower),
		AccountType:     GuessAccountType(lower),
		RawCounterparty: ExtractCounterparty(body),
	}
	fields.Amount, fields.HasAmount = ExtractAmount(body)
	return fields
}
