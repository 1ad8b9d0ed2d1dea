package classify

import (
	"strings"

	"khata/internal/models"
)

// DetectDirection labels the lower-cased body DEBIT, CREDIT, or UNKNOWN from
// lexical cues. Debit keywords take precedence: a body claiming both (a card
// payment confirmation quoting the credited account, say) moved money out
// from the sender's perspective more often than in.
func DetectDirection(body string) models.Direction {
	for _, kw := range debitKeywords {
		if strings.Contains(body, kw) {
			return models.DirectionDebit
		}
	}
	for _, kw := range creditKeywords {
		if strings.Contains(body, kw) {
			return models.DirectionCredit
		}
	}
	return models.DirectionUnknown
}

// containsAny reports whether body contains at least one of the keywords and
// returns the first hit for trace reporting.
func containsAny(body string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(body, kw) {
			return kw, true
		}
	}
	return "", false
}
