package classify

import (
	"strings"

	"khata/internal/models"
)

// Gate rule ids, in evaluation order. First match wins; each later rule
// assumes all earlier ones failed.
const (
	RuleFilterInfo           = "FILTER_INFO"
	RuleFilterFuture         = "FILTER_FUTURE"
	RuleFilterAvlBal         = "FILTER_AVL_BAL"
	RuleFilterNoConfirmation = "FILTER_NO_CONFIRMATION"
	RuleFilterNoDirection    = "FILTER_NO_DIRECTION"
	RuleCardSpend            = "INVARIANT_CARD_SPEND"
	RuleP2PTransfer          = "INVARIANT_P2P_TRANSFER"
	RuleFilterParserNull     = "FILTER_PARSER_NULL"
)

// runGate evaluates admission rules 1 through 5b against the lower-cased
// body. It returns a non-nil Decision when a rule settled the message; nil
// means the message falls through to the nature resolver (rule 5c).
func (c *Classifier) runGate(lower string, fields ParsedFields, tb *traceBuilder) *Decision {
	// Rule 1: informational notices are never ledger events.
	if hit, ok := containsAny(lower, excludedPhrases); ok {
		tb.matched(RuleFilterInfo, "Informational notice filter", RuleTypeGateFilter, "excluded phrase: "+hit, 1.0)
		d := NewDrop(Drop{Reason: "Informational/OTP", RuleID: RuleFilterInfo})
		return &d
	}
	tb.passed(RuleFilterInfo, "Informational notice filter", RuleTypeGateFilter)

	// Rule 2: money that has not moved yet. The nature is still PENDING so
	// the trace shows why the reminder was recognized.
	if hit, ok := containsAny(lower, futurePhrases); ok {
		tb.matched(RuleFilterFuture, "Future/reminder filter", RuleTypeGateFilter, "future phrase: "+hit, 1.0)
		d := NewDrop(Drop{Reason: "Future/Reminder", RuleID: RuleFilterFuture, Nature: models.NaturePending})
		return &d
	}
	tb.passed(RuleFilterFuture, "Future/reminder filter", RuleTypeGateFilter)

	// Rule 3: balance-only notifications carry a balance phrase, no
	// confirmation verb, and no payment wording.
	_, hasVerb := containsAny(lower, confirmationVerbs)
	if hit, ok := containsAny(lower, balancePhrases); ok && !hasVerb && !strings.Contains(lower, "payment") {
		tb.matched(RuleFilterAvlBal, "Balance-only filter", RuleTypeGateFilter, "balance phrase: "+hit, 1.0)
		d := NewDrop(Drop{Reason: "Balance Info Only", RuleID: RuleFilterAvlBal})
		return &d
	}
	tb.passed(RuleFilterAvlBal, "Balance-only filter", RuleTypeGateFilter)

	// Rule 4: no confirmation verb, no completed transaction. Empty bodies
	// land here too.
	if !hasVerb {
		tb.matched(RuleFilterNoConfirmation, "Confirmation verb filter", RuleTypeGateFilter, "no confirmation verb present", 1.0)
		d := NewDrop(Drop{Reason: "Missing Confirmation Verb", RuleID: RuleFilterNoConfirmation})
		return &d
	}
	tb.passed(RuleFilterNoConfirmation, "Confirmation verb filter", RuleTypeGateFilter)

	// A verb like "processed" or "txn" confirms a transaction without
	// telling us which way money moved. Unknown direction is unresolvable.
	if fields.Direction == models.DirectionUnknown {
		tb.matched(RuleFilterNoDirection, "Direction filter", RuleTypeGateFilter, "direction could not be determined", 1.0)
		d := NewDrop(Drop{Reason: "Unknown Direction", RuleID: RuleFilterNoDirection})
		return &d
	}
	tb.passed(RuleFilterNoDirection, "Direction filter", RuleTypeGateFilter)

	// Rule 5a: a card transaction that is not a bill payment is spend,
	// whatever the decision tree would have said.
	if strings.Contains(lower, "card") {
		_, verb := containsAny(lower, cardSpendVerbs)
		_, negated := containsAny(lower, cardSpendNegations)
		if verb && !negated {
			tb.matched(RuleCardSpend, "Card spend reality check", RuleTypeEconomicReality, "card transaction without payment wording", 0.9)
			var nature models.TransactionNature
			if fields.AccountType == models.AccountGuessCreditCard {
				nature = models.NatureCreditCardSpend
			}
			d := NewInsert(Insert{
				Type:                    models.TypeExpense,
				Nature:                  nature,
				EligibleForExpenseTotal: true,
				AccountType:             fields.AccountType,
				Confidence:              0.9,
				Reasoning:               RuleCardSpend,
				Persistable:             true,
			})
			return &d
		}
	}
	tb.passed(RuleCardSpend, "Card spend reality check", RuleTypeEconomicReality)

	// Rule 5b: money moved between people is a transfer, not spend.
	if hit, ok := containsAny(lower, p2pKeywords); ok {
		tb.matched(RuleP2PTransfer, "P2P transfer reality check", RuleTypeEconomicReality, "p2p keyword: "+hit, 0.85)
		d := NewInsert(Insert{
			Type:                    models.TypeTransfer,
			EligibleForExpenseTotal: false,
			AccountType:             fields.AccountType,
			Confidence:              0.85,
			Reasoning:               RuleP2PTransfer,
			Persistable:             true,
		})
		return &d
	}
	tb.passed(RuleP2PTransfer, "P2P transfer reality check", RuleTypeEconomicReality)

	return nil
}
