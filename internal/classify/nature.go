package classify

import (
	"strings"

	"khata/internal/models"
)

// Decision tree rule ids, in evaluation order.
const (
	RuleTreePending      = "TREE_L1_PENDING"
	RuleTreeCCPayment    = "TREE_L2_CC_PAYMENT"
	RuleTreeCCSpend      = "TREE_L3_CC_SPEND"
	RuleTreeSelfTransfer = "TREE_L4_SELF_TRANSFER"
	RuleTreeIncome       = "TREE_L5_INCOME"
	RuleTreeExpense      = "TREE_L6_EXPENSE"
	RuleTreeFallback     = "FALLBACK_LOW_CONFIDENCE"
)

// Per-level confidence. The fallback is pinned at 0.5 and flagged for review.
const (
	confPending      = 0.95
	confCCPayment    = 0.95
	confCCSpend      = 0.9
	confSelfTransfer = 0.85
	confIncome       = 0.8
	confExpense      = 0.7
	confFallback     = 0.5
)

var treeLevels = []struct{ id, name string }{
	{RuleTreePending, "Pending / future event"},
	{RuleTreeCCPayment, "Credit card bill payment"},
	{RuleTreeCCSpend, "Credit card spend"},
	{RuleTreeSelfTransfer, "Self transfer"},
	{RuleTreeIncome, "Income"},
	{RuleTreeExpense, "Debit fallback"},
}

// natureResolution is the outcome of one pass through the decision tree.
type natureResolution struct {
	Nature        models.TransactionNature
	Type          models.TransactionType
	Confidence    float64
	RuleID        string
	Reason        string
	LowConfidence bool
}

// resolveNature walks the six-level decision tree in order and stops at the
// first level that matches. A matched level is never re-evaluated by a lower
// one; the remaining levels are recorded as SKIPPED. When nothing matches,
// the last-resort fallback decides by direction alone at fixed 0.5
// confidence, explicitly flagged low-confidence.
func (c *Classifier) resolveNature(lower string, dir models.Direction, account models.AccountTypeGuess, tb *traceBuilder) *natureResolution {
	for i, level := range treeLevels {
		res := c.evaluateLevel(level.id, lower, dir, account)
		if res == nil {
			tb.passed(level.id, level.name, RuleTypeDecisionTree)
			continue
		}
		tb.matched(level.id, level.name, RuleTypeDecisionTree, res.Reason, res.Confidence)
		for _, skipped := range treeLevels[i+1:] {
			tb.skipped(skipped.id, skipped.name, RuleTypeDecisionTree)
		}
		return res
	}

	res := &natureResolution{
		Confidence:    confFallback,
		RuleID:        RuleTreeFallback,
		LowConfidence: true,
	}
	if dir == models.DirectionCredit {
		res.Nature = models.NatureIncome
		res.Type = models.TypeIncome
		res.Reason = "no level matched; credit direction defaulted to income"
	} else {
		res.Nature = models.NatureExpense
		res.Type = models.TypeExpense
		res.Reason = "no level matched; debit direction defaulted to expense"
	}
	tb.matched(RuleTreeFallback, "Last-resort fallback", RuleTypeDecisionTree, res.Reason, confFallback)
	return res
}

func (c *Classifier) evaluateLevel(id, lower string, dir models.Direction, account models.AccountTypeGuess) *natureResolution {
	switch id {
	case RuleTreePending:
		if hit, ok := containsAny(lower, pendingPhrases); ok {
			return &natureResolution{
				Nature:     models.NaturePending,
				Type:       models.TypePending,
				Confidence: confPending,
				RuleID:     id,
				Reason:     "pending phrase: " + hit,
			}
		}

	case RuleTreeCCPayment:
		if account != models.AccountGuessCreditCard {
			return nil
		}
		if hit, ok := matchCCPayment(lower); ok {
			return &natureResolution{
				Nature:     models.NatureCreditCardPayment,
				Type:       models.TypeLiabilityPayment,
				Confidence: confCCPayment,
				RuleID:     id,
				Reason:     "credit card payment pattern: " + hit,
			}
		}

	case RuleTreeCCSpend:
		if dir != models.DirectionDebit || account != models.AccountGuessCreditCard {
			return nil
		}
		if hit, ok := containsAny(lower, ccSpendKeywords); ok {
			return &natureResolution{
				Nature:     models.NatureCreditCardSpend,
				Type:       models.TypeExpense,
				Confidence: confCCSpend,
				RuleID:     id,
				Reason:     "credit card spend keyword: " + hit,
			}
		}

	case RuleTreeSelfTransfer:
		if reason, ok := c.matchSelfTransfer(lower); ok {
			return &natureResolution{
				Nature:     models.NatureSelfTransfer,
				Type:       models.TypeTransfer,
				Confidence: confSelfTransfer,
				RuleID:     id,
				Reason:     reason,
			}
		}

	case RuleTreeIncome:
		if dir != models.DirectionCredit {
			return nil
		}
		if hit, ok := containsAny(lower, incomeKeywords); ok {
			res := &natureResolution{
				Nature:     models.NatureIncome,
				Type:       models.TypeIncome,
				Confidence: confIncome,
				RuleID:     id,
				Reason:     "income keyword: " + hit,
			}
			if hit == "cashback" {
				res.Type = models.TypeCashback
			}
			return res
		}

	case RuleTreeExpense:
		if dir != models.DirectionDebit {
			return nil
		}
		res := &natureResolution{
			Nature:     models.NatureExpense,
			Type:       models.TypeExpense,
			Confidence: confExpense,
			RuleID:     id,
			Reason:     "debit with no earlier match",
		}
		if hit, ok := containsAny(lower, investmentKeywords); ok {
			res.Type = models.TypeInvestmentOutflow
			res.Reason = "debit to investment destination: " + hit
		}
		return res
	}
	return nil
}

// matchCCPayment reports whether the body reads as a payment toward a credit
// card bill and which pattern established it.
func matchCCPayment(lower string) (string, bool) {
	for _, pat := range ccPaymentPatterns {
		if pat.re.MatchString(lower) {
			return pat.name, true
		}
	}
	if hit, ok := containsAny(lower, ccPaymentLiterals); ok {
		return hit, true
	}
	// Flexible conjunction: "payment" + ("received" | "credited") + "credit card".
	if strings.Contains(lower, "payment") &&
		(strings.Contains(lower, "received") || strings.Contains(lower, "credited")) &&
		strings.Contains(lower, "credit card") {
		return "payment_conjunction", true
	}
	return "", false
}

// matchSelfTransfer checks the three self-transfer signals: explicit keyword,
// a UPI handle owned by the user, and the masked account transfer pattern.
func (c *Classifier) matchSelfTransfer(lower string) (string, bool) {
	if hit, ok := containsAny(lower, selfTransferKeywords); ok {
		return "self transfer keyword: " + hit, true
	}
	if m := upiHandlePattern.FindStringSubmatch(lower); m != nil {
		if c.handles != nil && c.handles.Contains(m[1]) {
			return "known UPI handle: " + m[1] + "@" + m[2], true
		}
	}
	if maskedTransferPattern.MatchString(lower) {
		return "masked own-account transfer", true
	}
	return "", false
}

// eligibleForExpenseTotal reports whether rows of this type count toward
// spend aggregates. Transfers and liability payments stay out so the same
// rupee is never totalled twice.
func eligibleForExpenseTotal(t models.TransactionType) bool {
	return t == models.TypeExpense
}
