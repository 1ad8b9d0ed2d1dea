// Package classify implements the notification classification pipeline:
// direction detection, the ledger admission gate, the nature decision tree,
// and the post-resolution hard invariants. The pipeline is pure with respect
// to storage; callers persist admitted decisions and traces themselves.
package classify

import (
	"time"

	"khata/internal/models"
)

// RawMessage is one immutable notification message to classify.
type RawMessage struct {
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// RuleResult states how a single rule evaluation ended.
type RuleResult string

const (
	// RuleMatched means the rule fired and decided (or corrected) the outcome.
	RuleMatched RuleResult = "MATCHED"
	// RulePassed means the rule was evaluated and did not fire.
	RulePassed RuleResult = "PASSED"
	// RuleSkipped means an earlier match short-circuited past this rule.
	RuleSkipped RuleResult = "SKIPPED"
)

// Rule types recorded in the trace.
const (
	RuleTypeGateFilter      = "LEDGER_GATE_FILTER"
	RuleTypeEconomicReality = "ECONOMIC_REALITY"
	RuleTypeDecisionTree    = "DECISION_TREE"
	RuleTypeInvariant       = "POST_DECISION_TREE_INVARIANT"
)

// RuleExecution is one evaluated rule in a message's rule trace.
type RuleExecution struct {
	RuleID     string     `json:"ruleId"`
	RuleName   string     `json:"ruleName"`
	RuleType   string     `json:"ruleType"`
	Result     RuleResult `json:"result"`
	Confidence float64    `json:"confidence,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// Outcome discriminates the two branches of a Decision.
type Outcome string

const (
	OutcomeInsert Outcome = "INSERT"
	OutcomeDrop   Outcome = "DROP"
)

// Insert carries everything needed to write a ledger row. Persistable is
// false for PENDING/IGNORE types, which produce a decision and a trace but
// never a row.
type Insert struct {
	Type                    models.TransactionType   `json:"transactionType"`
	Nature                  models.TransactionNature `json:"nature,omitempty"`
	EligibleForExpenseTotal bool                     `json:"eligibleForExpenseTotal"`
	AccountType             models.AccountTypeGuess  `json:"accountType"`
	Confidence              float64                  `json:"confidence"`
	Reasoning               string                   `json:"reasoning"`
	RequiresReview          bool                     `json:"requiresReview"`
	Persistable             bool                     `json:"persistable"`
}

// Drop carries the rejection reason and the gate rule that produced it.
// Nature is set when resolution ran far enough to assign one before the
// message was rejected (a future-dated reminder, for example).
type Drop struct {
	Reason string                   `json:"reason"`
	RuleID string                   `json:"ruleId"`
	Nature models.TransactionNature `json:"nature,omitempty"`
}

// Decision is the tagged union every message resolves to. Exactly one of
// Insert or Drop is non-nil, matching Outcome. Callers must switch on
// Outcome rather than testing pointers.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Insert  *Insert `json:"insert,omitempty"`
	Drop    *Drop   `json:"drop,omitempty"`
}

// NewInsert builds an Insert decision.
func NewInsert(ins Insert) Decision {
	return Decision{Outcome: OutcomeInsert, Insert: &ins}
}

// NewDrop builds a Drop decision.
func NewDrop(drop Drop) Decision {
	return Decision{Outcome: OutcomeDrop, Drop: &drop}
}

// IsInsert reports whether the decision admits the message to the ledger.
func (d Decision) IsInsert() bool { return d.Outcome == OutcomeInsert }
