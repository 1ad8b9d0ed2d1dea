package classify

import (
	"fmt"
	"strings"

	"khata/internal/models"
)

// HandleRegistry answers whether a UPI handle belongs to the user. The
// registry is externally maintained; the classifier treats it as an opaque
// set of lower-cased handle strings.
type HandleRegistry interface {
	Contains(handle string) bool
}

// Classifier runs the full admission-and-classification pipeline for one
// message at a time. It holds no per-message state and is safe for
// concurrent use as long as the registry is.
type Classifier struct {
	handles HandleRegistry
}

// New creates a Classifier backed by the given handle registry. A nil
// registry disables UPI-handle self-transfer detection.
func New(handles HandleRegistry) *Classifier {
	return &Classifier{handles: handles}
}

// Result carries everything one classification produced: the decision, the
// parsed fields, the full rule trace, and an error description when the
// resolver failed internally. A Result always holds a definite decision,
// even on failure.
type Result struct {
	Decision Decision
	Parsed   ParsedFields
	Trace    []RuleExecution
	Conflict *ConflictNote
	Err      string
}

// ConflictNote records a tie-break between competing signals, naming the
// winner so the trace can explain the call.
type ConflictNote struct {
	Description   string
	WinningRuleID string
}

// RuleDirectionPrecedence identifies the debit-wins tie-break in traces.
const RuleDirectionPrecedence = "DIRECTION_DEBIT_PRECEDENCE"

// directionConflict notes a body claiming both directions. Debit precedence
// decides the winner; the note survives into the trace.
func directionConflict(lower string) *ConflictNote {
	debitHit, debit := containsAny(lower, debitKeywords)
	creditHit, credit := containsAny(lower, creditKeywords)
	if !debit || !credit {
		return nil
	}
	return &ConflictNote{
		Description:   fmt.Sprintf("body matched debit cue %q and credit cue %q", debitHit, creditHit),
		WinningRuleID: RuleDirectionPrecedence,
	}
}

// Classify resolves one raw message into a ledger decision. The pipeline is:
// direction detection, admission gate (rules 1-5b), nature resolution
// (rule 5c), then hard invariants over any Insert. Internal failures are
// recovered and downgraded to a synthetic requires-review outcome; Classify
// never panics and never returns a partial result.
func (c *Classifier) Classify(msg RawMessage) (result Result) {
	lower := strings.ToLower(strings.TrimSpace(msg.Body))
	fields := Parse(msg.Body)
	tb := newTraceBuilder()
	conflict := directionConflict(lower)

	defer func() {
		if r := recover(); r != nil {
			result = c.degraded(fields, tb, fmt.Sprintf("resolver failure: %v", r))
		}
		result.Conflict = conflict
	}()

	if d := c.runGate(lower, fields, tb); d != nil {
		if d.IsInsert() {
			applyInvariants(lower, fields.Direction, d.Insert, tb)
		}
		return Result{Decision: *d, Parsed: fields, Trace: tb.executions}
	}

	// Rule 5c: defer to the decision tree.
	res := c.resolveNature(lower, fields.Direction, fields.AccountType, tb)
	if res == nil {
		tb.matched(RuleFilterParserNull, "Resolver yielded nothing", RuleTypeGateFilter,
			"decision tree produced no type", 1.0)
		return Result{
			Decision: NewDrop(Drop{Reason: "Parser yielded null type", RuleID: RuleFilterParserNull}),
			Parsed:   fields,
			Trace:    tb.executions,
		}
	}

	ins := Insert{
		Type:                    res.Type,
		Nature:                  res.Nature,
		EligibleForExpenseTotal: eligibleForExpenseTotal(res.Type),
		AccountType:             fields.AccountType,
		Confidence:              res.Confidence,
		Reasoning:               res.RuleID + ": " + res.Reason,
		RequiresReview:          res.LowConfidence,
		Persistable:             res.Type.Persistable(),
	}
	applyInvariants(lower, fields.Direction, &ins, tb)

	return Result{Decision: NewInsert(ins), Parsed: fields, Trace: tb.executions}
}

// degraded builds the synthetic requires-confirmation outcome used when the
// resolver fails internally. The error is attached to the result so the
// trace keeps it; the decision itself is a zero-confidence insert a human
// must confirm, not a lost message.
func (c *Classifier) degraded(fields ParsedFields, tb *traceBuilder, errMsg string) Result {
	ins := Insert{
		AccountType:    fields.AccountType,
		Confidence:     0,
		Reasoning:      "RESOLVER_FAILURE",
		RequiresReview: true,
	}
	switch fields.Direction {
	case models.DirectionDebit:
		ins.Type = models.TypeExpense
		ins.Persistable = true
	case models.DirectionCredit:
		ins.Type = models.TypeIncome
		ins.Persistable = true
	default:
		ins.Type = models.TypeIgnore
	}
	ins.EligibleForExpenseTotal = eligibleForExpenseTotal(ins.Type)
	return Result{
		Decision: NewInsert(ins),
		Parsed:   fields,
		Trace:    tb.executions,
		Err:      errMsg,
	}
}
