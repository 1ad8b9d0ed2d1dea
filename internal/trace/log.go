// Package trace builds and persists decision trace logs: one replayable
// record per classified message. Sessions are explicit objects passed by
// handle, so concurrent scans never share hidden state, and every write
// failure is contained here; a lost trace must never change a
// classification outcome.
package trace

import (
	"khata/internal/classify"
	"khata/internal/models"
)

// RawInput echoes the message exactly as it arrived. Field names follow the
// established log format consumed by the audit and training tooling.
type RawInput struct {
	FullMessageText string           `json:"fullMessageText"`
	Sender          string           `json:"sender"`
	Amount          string           `json:"amount,omitempty"`
	Direction       models.Direction `json:"direction"`
}

// ParsedFields holds the structured values extraction produced.
type ParsedFields struct {
	MerchantName string                   `json:"merchantName,omitempty"`
	AccountType  models.AccountTypeGuess  `json:"accountType"`
	Nature       models.TransactionNature `json:"nature,omitempty"`
}

// FinalDecision is the settled outcome for one message.
type FinalDecision struct {
	Outcome                 classify.Outcome       `json:"outcome"`
	TransactionType         models.TransactionType `json:"transactionType,omitempty"`
	CategoryName            string                 `json:"categoryName,omitempty"`
	Confidence              float64                `json:"confidence"`
	Reasoning               string                 `json:"reasoning,omitempty"`
	DropReason              string                 `json:"dropReason,omitempty"`
	RuleID                  string                 `json:"ruleId,omitempty"`
	EligibleForExpenseTotal bool                   `json:"eligibleForExpenseTotal"`
	Persisted               bool                   `json:"persisted"`
}

// ConflictResolution records a tie-break between rules that both claimed the
// message, naming the winner.
type ConflictResolution struct {
	Description   string `json:"description"`
	WinningRuleID string `json:"winningRuleId"`
}

// Override mirrors a confirmed user correction attached after the fact.
type Override struct {
	CorrectedType     models.TransactionType `json:"correctedType"`
	CorrectedCategory string                 `json:"correctedCategory,omitempty"`
	Source            string                 `json:"source"`
}

// Log is one complete decision trace. Build it with NewLog and the setters,
// then Finalize it; a finalized log rejects further mutation.
type Log struct {
	TransactionID      string                   `json:"transactionId"`
	Timestamp          int64                    `json:"timestamp"`
	RawInput           RawInput                 `json:"rawInput"`
	ParsedFields       ParsedFields             `json:"parsedFields"`
	RuleTrace          []classify.RuleExecution `json:"ruleTrace"`
	ConflictResolution *ConflictResolution      `json:"conflictResolution,omitempty"`
	FinalDecision      FinalDecision            `json:"finalDecision"`
	UserOverride       *Override                `json:"userOverride,omitempty"`
	Error              string                   `json:"error,omitempty"`

	finalized bool
}

// NewLog starts a trace for one message. The rule trace keeps only MATCHED
// and PASSED executions; SKIPPED levels carry no information beyond their
// absence and would dominate the file size across a large scan.
func NewLog(transactionID string, msg classify.RawMessage, result classify.Result) *Log {
	l := &Log{
		TransactionID: transactionID,
		Timestamp:     msg.ReceivedAt.UnixMilli(),
		RawInput: RawInput{
			FullMessageText: msg.Body,
			Sender:          msg.Sender,
			Direction:       result.Parsed.Direction,
		},
		ParsedFields: ParsedFields{
			AccountType: result.Parsed.AccountType,
		},
		RuleTrace: filterTrace(result.Trace),
		Error:     result.Err,
	}
	if result.Conflict != nil {
		l.ConflictResolution = &ConflictResolution{
			Description:   result.Conflict.Description,
			WinningRuleID: result.Conflict.WinningRuleID,
		}
	}
	if result.Parsed.HasAmount {
		l.RawInput.Amount = result.Parsed.Amount.String()
	}

	switch result.Decision.Outcome {
	case classify.OutcomeInsert:
		ins := result.Decision.Insert
		l.ParsedFields.Nature = ins.Nature
		l.FinalDecision = FinalDecision{
			Outcome:                 classify.OutcomeInsert,
			TransactionType:         ins.Type,
			Confidence:              ins.Confidence,
			Reasoning:               ins.Reasoning,
			EligibleForExpenseTotal: ins.EligibleForExpenseTotal,
			Persisted:               ins.Persistable,
		}
	case classify.OutcomeDrop:
		drop := result.Decision.Drop
		l.ParsedFields.Nature = drop.Nature
		l.FinalDecision = FinalDecision{
			Outcome:    classify.OutcomeDrop,
			DropReason: drop.Reason,
			RuleID:     drop.RuleID,
		}
	}
	return l
}

// SetMerchant attaches the normalized counterparty and category.
func (l *Log) SetMerchant(name, category string) {
	if l.finalized {
		return
	}
	l.ParsedFields.MerchantName = name
	l.FinalDecision.CategoryName = category
}

// SetConflict records a tie-break explanation.
func (l *Log) SetConflict(description, winningRuleID string) {
	if l.finalized {
		return
	}
	l.ConflictResolution = &ConflictResolution{Description: description, WinningRuleID: winningRuleID}
}

// SetOverride attaches a confirmed user correction.
func (l *Log) SetOverride(o Override) {
	if l.finalized {
		return
	}
	l.UserOverride = &o
}

// SetPersisted records whether a ledger row was actually written.
func (l *Log) SetPersisted(persisted bool) {
	if l.finalized {
		return
	}
	l.FinalDecision.Persisted = persisted
}

// Finalize freezes the log. Setters become no-ops afterwards.
func (l *Log) Finalize() { l.finalized = true }

func filterTrace(executions []classify.RuleExecution) []classify.RuleExecution {
	kept := make([]classify.RuleExecution, 0, len(executions))
	for _, e := range executions {
		if e.Result == classify.RuleMatched || e.Result == classify.RulePassed {
			kept = append(kept, e)
		}
	}
	return kept
}
