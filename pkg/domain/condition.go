package domain

import (
	"strconv"
	"strings"
)

// ConditionType classifies an outgoing edge. The set is closed: evaluation
// switches exhaustively over these values and treats anything else as a
// non-transition.
type ConditionType string

const (
	// ConditionByVar branches on the value just captured for the node.
	ConditionByVar ConditionType = "byVar"
	// ConditionBySuccess is the default/only path of a node.
	ConditionBySuccess ConditionType = "bySuccess"
	// ConditionByUnhappy is followed when an external action fails.
	ConditionByUnhappy ConditionType = "byUnhappy"
	// ConditionByGather branches on a previously gathered field.
	ConditionByGather ConditionType = "byGather"
	// ConditionByInput branches on a configuration input value.
	ConditionByInput ConditionType = "byInput"
)

// Valid reports whether t is one of the declared condition types.
func (t ConditionType) Valid() bool {
	switch t {
	case ConditionByVar, ConditionBySuccess, ConditionByUnhappy, ConditionByGather, ConditionByInput:
		return true
	}
	return false
}

// Operator names the comparison a validator applies. Closed set; an
// unknown operator never matches.
type Operator string

const (
	OperatorEqual       Operator = "equal"
	OperatorNotEqual    Operator = "notEqual"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
	OperatorContains    Operator = "contains"
)

// Validator is one comparison rule on a condition.
type Validator struct {
	Operator Operator `json:"operator_name" yaml:"operator_name"`
	Value    string   `json:"value" yaml:"value"`
}

// Matches evaluates the validator against a captured answer. String
// comparisons are case-insensitive; greaterThan/lessThan compare
// numerically and never match non-numeric operands.
func (v Validator) Matches(answer string) bool {
	switch v.Operator {
	case OperatorEqual:
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(v.Value))
	case OperatorNotEqual:
		return !strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(v.Value))
	case OperatorGreaterThan:
		a, b, ok := numericPair(answer, v.Value)
		return ok && a > b
	case OperatorLessThan:
		a, b, ok := numericPair(answer, v.Value)
		return ok && a < b
	case OperatorContains:
		return strings.Contains(strings.ToLower(strings.TrimSpace(answer)), strings.ToLower(strings.TrimSpace(v.Value)))
	}
	return false
}

func numericPair(a, b string) (float64, float64, bool) {
	fa, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, false
	}
	fb, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, false
	}
	return fa, fb, true
}

// Condition is a directed, typed edge to another instruction.
// NextInstructionID may be empty, meaning unresolved or terminal.
type Condition struct {
	ID                string        `json:"id" yaml:"id"`
	NextInstructionID string        `json:"next_instruction_id,omitempty" yaml:"next_instruction_id,omitempty"`
	Type              ConditionType `json:"type" yaml:"type"`
	Validators        []Validator   `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// Matches reports whether the captured answer satisfies the condition.
// All validators must pass (they are ANDed); a condition with no
// validators never matches on value.
func (c Condition) Matches(answer string) bool {
	if len(c.Validators) == 0 {
		return false
	}
	for _, v := range c.Validators {
		if !v.Matches(answer) {
			return false
		}
	}
	return true
}
