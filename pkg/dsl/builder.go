package dsl

import (
	"fmt"

	"github.com/acopio/formflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	moduleID string
	start    string
	order    []string
	nodes    map[string]*InstructionBuilder
}

// New creates a new schema builder for the given module.
func New(moduleID string) *Builder {
	return &Builder{
		moduleID: moduleID,
		nodes:    make(map[string]*InstructionBuilder),
	}
}

// Start creates (or returns) an instruction and marks it as the entry
// point of the flow.
func (b *Builder) Start(id string) *InstructionBuilder {
	b.start = id
	return b.Add(id)
}

// Add creates a new instruction in the graph. If the instruction already
// exists, it returns the existing builder.
func (b *Builder) Add(id string) *InstructionBuilder {
	if ib, ok := b.nodes[id]; ok {
		return ib
	}
	ib := &InstructionBuilder{
		instruction: domain.Instruction{ID: id},
		builder:     b,
		nextCond:    1,
	}
	b.nodes[id] = ib
	b.order = append(b.order, id)
	return ib
}

// Build compiles and validates the schema document. Instructions keep
// their insertion order.
func (b *Builder) Build() (*domain.Document, error) {
	if b.start == "" {
		return nil, fmt.Errorf("no start instruction set")
	}

	doc := &domain.Document{
		InstructionStart: b.start,
		ModuleID:         b.moduleID,
		Instructions:     make([]domain.Instruction, 0, len(b.order)),
	}
	for _, id := range b.order {
		doc.Instructions = append(doc.Instructions, b.nodes[id].instruction)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("built schema is invalid: %w", err)
	}
	return doc, nil
}
