package classify

import (
	"testing"

	"khata/internal/models"
)

func TestInvariantDebitNeverIncome(t *testing.T) {
	ins := Insert{
		Type:        models.TypeIncome,
		Confidence:  0.8,
		Reasoning:   "TREE_L5_INCOME: income keyword: refund",
		Persistable: true,
	}
	tb := newTraceBuilder()
	applyInvariants("rs.500 debited towards refund adjustment", models.DirectionDebit, &ins, tb)

	if ins.Type != models.TypeExpense {
		t.Fatalf("expected forced type EXPENSE, got %s", ins.Type)
	}
	if !ins.RequiresReview {
		t.Error("a forced correction must be flagged for review")
	}
	if ex := findExecution(tb.executions, RuleInvDebitIncome); ex == nil || ex.Result != RuleMatched {
		t.Error("forced invariant must appear MATCHED in the trace")
	}
	if !ins.EligibleForExpenseTotal {
		t.Error("eligibility must be recomputed after the force")
	}
}

func TestInvariantCCReceived(t *testing.T) {
	t.Run("forces_liability_payment", func(t *testing.T) {
		// No "payment" wording, so the decision tree read this credit as
		// income; the invariant must correct it.
		res := classifyBody(t, "Rs.2,000 received on your credit card via NEFT.")
		ins := requireInsert(t, res)
		if ins.Type != models.TypeLiabilityPayment {
			t.Fatalf("expected forced type LIABILITY_PAYMENT, got %s", ins.Type)
		}
		if ins.Nature != models.NatureCreditCardPayment {
			t.Errorf("expected nature CREDIT_CARD_PAYMENT, got %q", ins.Nature)
		}
		if !ins.RequiresReview {
			t.Error("a forced correction must be flagged for review")
		}
		if ex := findExecution(res.Trace, RuleInvCCReceived); ex == nil || ex.Result != RuleMatched {
			t.Error("forced invariant must appear MATCHED in the trace")
		}
	})

	t.Run("pending_is_exempt", func(t *testing.T) {
		ins := Insert{Type: models.TypePending, Persistable: false}
		tb := newTraceBuilder()
		applyInvariants("payment request received on your credit card", models.DirectionCredit, &ins, tb)
		if ins.Type != models.TypePending {
			t.Errorf("PENDING must stay exempt from the credit card force, got %s", ins.Type)
		}
	})
}

func TestInvariantNonPersistable(t *testing.T) {
	ins := Insert{Type: models.TypeIgnore, Persistable: true}
	tb := newTraceBuilder()
	applyInvariants("noise", models.DirectionUnknown, &ins, tb)

	if ins.Persistable {
		t.Error("IGNORE must be marked non-persistable")
	}
	if ex := findExecution(tb.executions, RuleInvNonPersistable); ex == nil || ex.Result != RuleMatched {
		t.Error("non-persistable invariant must appear MATCHED in the trace")
	}
}

func TestInvariantsAlwaysTraced(t *testing.T) {
	// Even when nothing forces, every invariant shows up as PASSED.
	ins := Insert{Type: models.TypeExpense, Persistable: true}
	tb := newTraceBuilder()
	applyInvariants("rs.500 debited at store", models.DirectionDebit, &ins, tb)

	for _, ruleID := range []string{RuleInvDebitIncome, RuleInvCCReceived, RuleInvNonPersistable} {
		ex := findExecution(tb.executions, ruleID)
		if ex == nil || ex.Result != RulePassed {
			t.Errorf("expected %s to be traced as PASSED", ruleID)
		}
	}
}
