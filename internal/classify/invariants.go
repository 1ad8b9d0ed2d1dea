package classify

import (
	"strings"

	"khata/internal/models"
)

// Hard invariant rule ids.
const (
	RuleInvDebitIncome    = "INV_1_DEBIT_INCOME"
	RuleInvCCReceived     = "INV_2_CC_RECEIVED"
	RuleInvNonPersistable = "INV_3_NON_PERSISTABLE"
)

// applyInvariants runs the hard invariants over an Insert decision,
// unconditionally and independent of confidence. An impossible state is
// force-corrected in place; every application, forced or skipped, lands in
// the trace so corrections are never silent.
func applyInvariants(lower string, dir models.Direction, ins *Insert, tb *traceBuilder) {
	// INV-1: a debit can never be income.
	if dir == models.DirectionDebit && ins.Type == models.TypeIncome {
		ins.Type = models.TypeExpense
		ins.Reasoning = ins.Reasoning + "; forced by " + RuleInvDebitIncome
		ins.RequiresReview = true
		tb.matched(RuleInvDebitIncome, "Debit cannot be income", RuleTypeInvariant,
			"type INCOME on a DEBIT message forced to EXPENSE", ins.Confidence)
	} else {
		tb.passed(RuleInvDebitIncome, "Debit cannot be income", RuleTypeInvariant)
	}

	// INV-2: money received on a credit card settles a liability.
	if strings.Contains(lower, "credit card") && strings.Contains(lower, "received") &&
		ins.Type != models.TypeLiabilityPayment && ins.Type != models.TypePending {
		ins.Type = models.TypeLiabilityPayment
		ins.Nature = models.NatureCreditCardPayment
		ins.Reasoning = ins.Reasoning + "; forced by " + RuleInvCCReceived
		ins.RequiresReview = true
		tb.matched(RuleInvCCReceived, "Credit card receipt is liability payment", RuleTypeInvariant,
			"credit card + received forced to LIABILITY_PAYMENT", ins.Confidence)
	} else {
		tb.passed(RuleInvCCReceived, "Credit card receipt is liability payment", RuleTypeInvariant)
	}

	// INV-3: pending or ignored events never become rows.
	if !ins.Type.Persistable() {
		ins.Persistable = false
		tb.matched(RuleInvNonPersistable, "Non-persistable type", RuleTypeInvariant,
			"type "+string(ins.Type)+" marked non-persistable", ins.Confidence)
	} else {
		tb.passed(RuleInvNonPersistable, "Non-persistable type", RuleTypeInvariant)
	}

	// Forces above may have changed the type; keep eligibility consistent.
	ins.EligibleForExpenseTotal = eligibleForExpenseTotal(ins.Type)
}
