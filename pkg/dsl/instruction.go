package dsl

import (
	"fmt"

	"github.com/acopio/formflow/pkg/domain"
)

// InstructionBuilder provides a fluent API for configuring one
// instruction.
type InstructionBuilder struct {
	instruction domain.Instruction
	builder     *Builder
	nextCond    int
}

// Gather marks the instruction as a data-capture step for the named
// field.
func (n *InstructionBuilder) Gather(name, valueType string) *InstructionBuilder {
	n.instruction.Config.IsGather = true
	n.instruction.Gather = &domain.GatherField{Name: name, ValueType: valueType}
	return n
}

// Optional marks the gathered field as skippable.
func (n *InstructionBuilder) Optional() *InstructionBuilder {
	if n.instruction.Gather != nil {
		n.instruction.Gather.Optional = true
	}
	return n
}

// Unique marks the gathered field for uniqueness checking on submit.
func (n *InstructionBuilder) Unique() *InstructionBuilder {
	if n.instruction.Gather != nil {
		n.instruction.Gather.Unique = true
	}
	return n
}

// Options attaches a closed choice list to the gathered field. Labels
// double as values.
func (n *InstructionBuilder) Options(labels ...string) *InstructionBuilder {
	if n.instruction.Gather == nil {
		return n
	}
	for i, label := range labels {
		n.instruction.Gather.Options = append(n.instruction.Gather.Options, domain.Option{
			ID:    fmt.Sprintf("opt-%s-%d", n.instruction.ID, i+1),
			Label: label,
			Value: label,
		})
	}
	return n
}

// Calculator marks the gathered field as derived from the expression.
// Calculated fields never prompt; they fill in from other answers.
func (n *InstructionBuilder) Calculator(name, expression string) *InstructionBuilder {
	n.instruction.Config.IsGather = true
	n.instruction.Gather = &domain.GatherField{
		Name:       name,
		ValueType:  domain.ValueCalculator,
		Optional:   true,
		Expression: expression,
	}
	return n
}

// Entity marks the gathered field as a reference into the named entity
// directory, optionally narrowed by a filter expression.
func (n *InstructionBuilder) Entity(name, entityType, filter string) *InstructionBuilder {
	n.instruction.Config.IsGather = true
	n.instruction.Gather = &domain.GatherField{
		Name:             name,
		ValueType:        domain.ValueEntity,
		EntityType:       entityType,
		FilterExpression: filter,
	}
	return n
}

// Tool configures the external action this instruction triggers.
func (n *InstructionBuilder) Tool(name string) *InstructionBuilder {
	n.instruction.Config.Tool = name
	return n
}

// At sets the authored canvas position.
func (n *InstructionBuilder) At(x, y float64) *InstructionBuilder {
	n.instruction.Config.Position = domain.Position{X: x, Y: y}
	return n
}

// Then adds the default success transition to the given instruction.
func (n *InstructionBuilder) Then(nextID string) *InstructionBuilder {
	return n.condition(domain.Condition{
		Type:              domain.ConditionBySuccess,
		NextInstructionID: nextID,
	})
}

// WhenEqual adds a value branch taken when the captured answer equals
// the given value (case-insensitive).
func (n *InstructionBuilder) WhenEqual(value, nextID string) *InstructionBuilder {
	return n.condition(domain.Condition{
		Type:              domain.ConditionByVar,
		NextInstructionID: nextID,
		Validators:        []domain.Validator{{Operator: domain.OperatorEqual, Value: value}},
	})
}

// When adds a value branch with an explicit operator.
func (n *InstructionBuilder) When(op domain.Operator, value, nextID string) *InstructionBuilder {
	return n.condition(domain.Condition{
		Type:              domain.ConditionByVar,
		NextInstructionID: nextID,
		Validators:        []domain.Validator{{Operator: op, Value: value}},
	})
}

// OnFailure adds the unhappy-path transition taken when the
// instruction's tool fails.
func (n *InstructionBuilder) OnFailure(nextID string) *InstructionBuilder {
	return n.condition(domain.Condition{
		Type:              domain.ConditionByUnhappy,
		NextInstructionID: nextID,
	})
}

func (n *InstructionBuilder) condition(c domain.Condition) *InstructionBuilder {
	c.ID = fmt.Sprintf("c-%s-%d", n.instruction.ID, n.nextCond)
	n.nextCond++
	n.instruction.Conditions = append(n.instruction.Conditions, c)
	return n
}

// Done returns to the graph builder.
func (n *InstructionBuilder) Done() *Builder {
	return n.builder
}
