package merchant

import (
	"regexp"
	"strings"
	"unicode"
)

// Candidate is the result of normalizing one raw counterparty token.
type Candidate struct {
	RawToken                string `json:"rawToken"`
	NormalizedName          string `json:"normalizedName"`
	RecognizedViaDictionary bool   `json:"recognizedViaDictionary"`
}

// gatewayPrefixes are payment-processor artifacts glued onto merchant names
// by card networks and UPI apps.
var gatewayPrefixes = []string{"pyu*", "atos*", "upi-", "rzp*", "cas*", "payu*", "ccav*"}

// noiseTokens never identify a merchant: corporate suffixes and processor
// words. Single-character tokens are dropped separately.
var noiseTokens = map[string]struct{}{
	"pvt": {}, "ltd": {}, "limited": {}, "private": {}, "llp": {},
	"inc": {}, "co": {}, "india": {}, "intl": {},
	"pay": {}, "payment": {}, "payments": {}, "razorpay": {},
	"payu": {}, "billdesk": {}, "gateway": {}, "ecom": {},
}

var (
	digitsPattern      = regexp.MustCompile(`\d+`)
	punctuationPattern = regexp.MustCompile(`[^\p{L}\s]+`)
	dottedSuffix       = regexp.MustCompile(`(\.[A-Za-z]{2,4})+$`)
)

// Normalizer canonicalizes raw counterparty tokens against a dictionary.
// The pipeline is pure and idempotent: re-normalizing a normalized value is
// a no-op.
type Normalizer struct {
	dict *Dictionary
}

// NewNormalizer creates a Normalizer. A nil dictionary is treated as empty.
func NewNormalizer(dict *Dictionary) *Normalizer {
	if dict == nil {
		dict = NewDictionary(nil)
	}
	return &Normalizer{dict: dict}
}

// Normalize runs the full cleanup pipeline over a raw token:
// dictionary lookup, gateway-prefix stripping, dotted-suffix/digit/
// punctuation removal, noise-token dropping, title-casing, and a final
// dictionary re-check. If cleaning empties the result the original trimmed
// token is returned unchanged.
func (n *Normalizer) Normalize(raw string) Candidate {
	trimmed := strings.TrimSpace(raw)
	cand := Candidate{RawToken: trimmed}
	if trimmed == "" {
		return cand
	}

	if canonical, ok := n.dict.Lookup(trimmed); ok {
		cand.NormalizedName = canonical
		cand.RecognizedViaDictionary = true
		return cand
	}

	stripped := stripGatewayPrefix(trimmed)
	if stripped != trimmed {
		if canonical, ok := n.dict.Lookup(stripped); ok {
			cand.NormalizedName = canonical
			cand.RecognizedViaDictionary = true
			return cand
		}
	}

	cleaned := dottedSuffix.ReplaceAllString(stripped, "")
	cleaned = digitsPattern.ReplaceAllString(cleaned, "")
	cleaned = punctuationPattern.ReplaceAllString(cleaned, " ")

	var kept []string
	for _, token := range strings.Fields(cleaned) {
		lower := strings.ToLower(token)
		if len([]rune(lower)) < 2 {
			continue
		}
		if _, noisy := noiseTokens[lower]; noisy {
			continue
		}
		kept = append(kept, titleCase(lower))
	}
	result := strings.Join(kept, " ")

	if canonical, ok := n.dict.Lookup(result); ok {
		cand.NormalizedName = canonical
		cand.RecognizedViaDictionary = true
		return cand
	}

	if result == "" {
		// Cleaning destroyed everything; the raw token is better than nothing.
		cand.NormalizedName = trimmed
		return cand
	}
	cand.NormalizedName = result
	return cand
}

func stripGatewayPrefix(token string) string {
	lower := strings.ToLower(token)
	for _, prefix := range gatewayPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(token[len(prefix):])
		}
	}
	return token
}

func titleCase(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
