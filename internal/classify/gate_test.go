package classify

import (
	"testing"
	"time"

	"khata/internal/models"
)

func classifyBody(t *testing.T, body string) Result {
	t.Helper()
	c := New(nil)
	return c.Classify(RawMessage{Sender: "VM-TEST", Body: body, ReceivedAt: time.Now()})
}

func requireDrop(t *testing.T, res Result) *Drop {
	t.Helper()
	if res.Decision.Outcome != OutcomeDrop || res.Decision.Drop == nil {
		t.Fatalf("expected a drop decision, got %+v", res.Decision)
	}
	return res.Decision.Drop
}

func requireInsert(t *testing.T, res Result) *Insert {
	t.Helper()
	if res.Decision.Outcome != OutcomeInsert || res.Decision.Insert == nil {
		t.Fatalf("expected an insert decision, got %+v", res.Decision)
	}
	return res.Decision.Insert
}

func findExecution(trace []RuleExecution, ruleID string) *RuleExecution {
	for i := range trace {
		if trace[i].RuleID == ruleID {
			return &trace[i]
		}
	}
	return nil
}

func TestGateInformationalFilter(t *testing.T) {
	t.Run("otp", func(t *testing.T) {
		res := classifyBody(t, "OTP is 482913 for your login. Do not share it.")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterInfo {
			t.Errorf("expected rule %s, got %s", RuleFilterInfo, drop.RuleID)
		}
	})

	t.Run("mandate", func(t *testing.T) {
		res := classifyBody(t, "Mandate of Rs.299 approved for Netflix, debited monthly.")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterInfo {
			t.Errorf("expected rule %s, got %s", RuleFilterInfo, drop.RuleID)
		}
	})

	t.Run("min_balance_alert", func(t *testing.T) {
		res := classifyBody(t, "Your A/c XX1234 has fallen below min bal. Charges debited if not restored.")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterInfo {
			t.Errorf("expected rule %s, got %s", RuleFilterInfo, drop.RuleID)
		}
	})
}

func TestGateFirstMatchWins(t *testing.T) {
	// Body trips both the informational and the future filter; only the
	// first evaluated rule may decide.
	res := classifyBody(t, "OTP 1234: confirm that Rs.500 will be debited tomorrow.")
	drop := requireDrop(t, res)
	if drop.RuleID != RuleFilterInfo {
		t.Fatalf("expected first rule %s to win, got %s", RuleFilterInfo, drop.RuleID)
	}

	// Nothing after the match may have been evaluated.
	if ex := findExecution(res.Trace, RuleFilterFuture); ex != nil {
		t.Errorf("rule %s should not appear after an earlier match, got result %s", RuleFilterFuture, ex.Result)
	}
}

func TestGateFutureFilter(t *testing.T) {
	res := classifyBody(t, "Rs.1,500 will be debited from your A/c XX1234 on 05-Sep-26.")
	drop := requireDrop(t, res)
	if drop.RuleID != RuleFilterFuture {
		t.Fatalf("expected rule %s, got %s", RuleFilterFuture, drop.RuleID)
	}
	if drop.Nature != models.NaturePending {
		t.Errorf("future drop should carry nature PENDING, got %q", drop.Nature)
	}
}

func TestGateBalanceOnlyFilter(t *testing.T) {
	t.Run("balance_without_verb", func(t *testing.T) {
		res := classifyBody(t, "Avl Bal in A/c XX1234 is Rs.12,430.55 as on 12-Aug-26.")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterAvlBal {
			t.Errorf("expected rule %s, got %s", RuleFilterAvlBal, drop.RuleID)
		}
	})

	t.Run("balance_with_transaction_passes", func(t *testing.T) {
		res := classifyBody(t, "Rs.500 debited from A/c XX1234. Avl Bal Rs.11,930.55.")
		requireInsert(t, res)
		if ex := findExecution(res.Trace, RuleFilterAvlBal); ex == nil || ex.Result != RulePassed {
			t.Error("balance filter should be evaluated and passed for a real debit")
		}
	})
}

func TestGateConfirmationVerbFilter(t *testing.T) {
	t.Run("no_verb", func(t *testing.T) {
		res := classifyBody(t, "Thank you for banking with us.")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterNoConfirmation {
			t.Errorf("expected rule %s, got %s", RuleFilterNoConfirmation, drop.RuleID)
		}
	})

	t.Run("empty_body", func(t *testing.T) {
		res := classifyBody(t, "")
		drop := requireDrop(t, res)
		if drop.RuleID != RuleFilterNoConfirmation {
			t.Errorf("expected rule %s, got %s", RuleFilterNoConfirmation, drop.RuleID)
		}
	})
}

func TestGateUnknownDirectionFilter(t *testing.T) {
	// "processed" confirms a transaction without revealing which way the
	// money moved.
	res := classifyBody(t, "Your transaction of Rs.750 has been processed successfully.")
	drop := requireDrop(t, res)
	if drop.RuleID != RuleFilterNoDirection {
		t.Errorf("expected rule %s, got %s", RuleFilterNoDirection, drop.RuleID)
	}
}

func TestGateCardSpend(t *testing.T) {
	t.Run("credit_card_spend", func(t *testing.T) {
		res := classifyBody(t, "Rs.1,299 spent on your HDFC Bank Credit Card XX2008 at AMAZON.")
		ins := requireInsert(t, res)
		if ins.Type != models.TypeExpense {
			t.Errorf("expected type EXPENSE, got %s", ins.Type)
		}
		if ins.Nature != models.NatureCreditCardSpend {
			t.Errorf("expected nature CREDIT_CARD_SPEND, got %q", ins.Nature)
		}
		if !ins.EligibleForExpenseTotal {
			t.Error("card spend should count toward expense totals")
		}
		if ins.Reasoning != RuleCardSpend {
			t.Errorf("expected reasoning %s, got %s", RuleCardSpend, ins.Reasoning)
		}
	})

	t.Run("debit_card_spend_has_no_cc_nature", func(t *testing.T) {
		res := classifyBody(t, "Rs.199 spent using your SBI Debit Card at BIG BAZAAR.")
		ins := requireInsert(t, res)
		if ins.Type != models.TypeExpense {
			t.Errorf("expected type EXPENSE, got %s", ins.Type)
		}
		if ins.Nature == models.NatureCreditCardSpend {
			t.Error("a debit card swipe must not carry credit card spend nature")
		}
	})

	t.Run("payment_received_negation", func(t *testing.T) {
		// "payment received" negates the card-spend cue; resolution falls
		// through to the decision tree, which reads it as a bill payment.
		res := classifyBody(t, "Payment received on your ICICI Credit Card, txn ref 994412.")
		ins := requireInsert(t, res)
		if ins.Type != models.TypeLiabilityPayment {
			t.Errorf("expected type LIABILITY_PAYMENT, got %s", ins.Type)
		}
		if ex := findExecution(res.Trace, RuleCardSpend); ex == nil || ex.Result != RulePassed {
			t.Error("card spend rule should be evaluated and passed")
		}
	})
}

func TestGateP2PTransfer(t *testing.T) {
	res := classifyBody(t, "Rs.1,000 sent to your friend Ravi via UPI from A/c XX1234.")
	ins := requireInsert(t, res)
	if ins.Type != models.TypeTransfer {
		t.Fatalf("expected type TRANSFER, got %s", ins.Type)
	}
	if ins.EligibleForExpenseTotal {
		t.Error("a transfer between people must not count toward expense totals")
	}
	if ins.Nature == models.NatureSelfTransfer {
		t.Error("a payment to a friend is not a self transfer")
	}
}
