package classify

// traceBuilder accumulates rule executions while one message moves through
// the pipeline. It is not safe for concurrent use; one builder serves exactly
// one message.
type traceBuilder struct {
	executions []RuleExecution
}

func newTraceBuilder() *traceBuilder {
	return &traceBuilder{executions: make([]RuleExecution, 0, 16)}
}

func (tb *traceBuilder) matched(ruleID, ruleName, ruleType, reason string, confidence float64) {
	tb.executions = append(tb.executions, RuleExecution{
		RuleID:     ruleID,
		RuleName:   ruleName,
		RuleType:   ruleType,
		Result:     RuleMatched,
		Confidence: confidence,
		Reason:     reason,
	})
}

func (tb *traceBuilder) passed(ruleID, ruleName, ruleType string) {
	tb.executions = append(tb.executions, RuleExecution{
		RuleID:   ruleID,
		RuleName: ruleName,
		RuleType: ruleType,
		Result:   RulePassed,
	})
}

func (tb *traceBuilder) skipped(ruleID, ruleName, ruleType string) {
	tb.executions = append(tb.executions, RuleExecution{
		RuleID:   ruleID,
		RuleName: ruleName,
		RuleType: ruleType,
		Result:   RuleSkipped,
	})
}
