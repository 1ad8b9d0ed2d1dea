package classify

import "regexp"

// Keyword and phrase tables for the gate and the decision tree. All matching
// happens against the lower-cased message body with plain substring checks,
// mirroring how real bank notification text is phrased. Patterns that need
// ordering between words are individually named regexps so each one can be
// reported in the rule trace on its own.

// Direction cues. A debit claim wins over an ambiguous dual match.
var (
	debitKeywords  = []string{"debited", "spent", "paid", "sent", "withdrawn"}
	creditKeywords = []string{"credited", "received", "deposited"}
)

// confirmationVerbs separate completed transactions from chatter. A message
// without any of these never describes a finished ledger event.
var confirmationVerbs = []string{
	"debited", "credited", "received", "paid", "sent",
	"processed", "spent", "withdrawn", "deposited", "txn",
}

// excludedPhrases mark informational notices: OTPs, logins, mandate and
// standing-instruction confirmations, minimum-balance and statement alerts.
var excludedPhrases = []string{
	"otp",
	"one time password",
	"verification code",
	"login",
	"mandate",
	"min bal",
	"minimum balance",
	"statement",
	"standing instruction registered",
	"standing instruction created",
	"autopay enabled",
	"recurring payment enabled",
}

// futurePhrases mark reminders about money that has not moved yet.
var futurePhrases = []string{
	"amount due",
	"will be debited",
	"will be charged",
	"due by",
	"due on",
	"is due",
	"reminder to pay",
}

// balancePhrases mark balance-only notifications.
var balancePhrases = []string{"available bal", "avl bal"}

// Rule 5a: card spend cues and their negations.
var (
	cardSpendVerbs     = []string{"spent", "txn", "transaction", "sent", "used"}
	cardSpendNegations = []string{"payment received", "credited"}
)

// Rule 5b: person-to-person transfer cues.
var p2pKeywords = []string{"friend", "family"}

// Level 1: events that have not settled (or never will).
var pendingPhrases = []string{
	"will be debited",
	"has requested money",
	"payment request",
	"due by",
	"standing instruction",
	"recurring charge",
	"subscription",
}

// Level 2: credit card bill payment patterns. Kept as separate named
// regexps for per-pattern trace reporting.
var ccPaymentPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"payment_received_cc", regexp.MustCompile(`payment.*received.*credit card`)},
	{"payment_credited_cc", regexp.MustCompile(`payment.*credited.*credit card`)},
	{"received_towards_cc", regexp.MustCompile(`received.*towards.*credit card`)},
	{"credited_to_cc", regexp.MustCompile(`credited to.*credit card`)},
}

// Level 2 literal cues that need no ordering.
var ccPaymentLiterals = []string{"received payment", "bbps"}

// Level 3: credit card spend cues.
var ccSpendKeywords = []string{"spent", "purchase", "swipe", "card transaction"}

// Level 4: self transfer cues.
var selfTransferKeywords = []string{
	"own account",
	"your own account",
	"transfer between your accounts",
	"transfer to self",
	"self",
}

var (
	// upiHandlePattern captures the handle of "credited/debited from/to
	// <handle>@<provider>"; the handle is checked against the user's known
	// handles to distinguish self transfers from payments to others.
	upiHandlePattern = regexp.MustCompile(`(?:credited|debited)\s+(?:from|to)\s+([a-z0-9._-]+)@([a-z][a-z0-9]*)`)

	// maskedTransferPattern matches "a/c xxxxx transfer" style bodies.
	maskedTransferPattern = regexp.MustCompile(`a/c\s+[x*]+\d*\s+transfer`)
)

// Level 5: inflow cues.
var incomeKeywords = []string{"salary", "neft", "interest", "dividend", "bonus", "refund", "cashback"}

// Level 6: an outflow to a broker or fund house is an investment, not spend.
var investmentKeywords = []string{
	"zerodha", "upstox", "groww",
	"mutual fund", "sip purchase", "folio", "investment",
}
