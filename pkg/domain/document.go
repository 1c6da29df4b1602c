package domain

import "fmt"

// Document is the persisted schema of one form: the full instruction list
// plus the entry point. It is the shape exchanged with the storage
// collaborator and consumed at data-collection time.
type Document struct {
	InstructionStart string        `json:"instruction_start" yaml:"instruction_start"`
	Instructions     []Instruction `json:"instructions" yaml:"instructions"`
	ModuleID         string        `json:"module_id" yaml:"module_id"`
}

// Start returns the entry instruction, or nil when the start id dangles.
func (d *Document) Start() *Instruction {
	return FindInstruction(d.Instructions, d.InstructionStart)
}

// Validate checks the structural invariants a document must satisfy before
// it may be saved: unique instruction ids, at most one bySuccess condition
// per instruction, a resolvable start id, and an acyclic condition graph.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Instructions))
	for i := range d.Instructions {
		in := &d.Instructions[i]
		if in.ID == "" {
			return fmt.Errorf("instruction at index %d has no id", i)
		}
		if seen[in.ID] {
			return fmt.Errorf("duplicate instruction id %q", in.ID)
		}
		seen[in.ID] = true

		success := 0
		for _, c := range in.Conditions {
			if !c.Type.Valid() {
				return fmt.Errorf("instruction %q: unknown condition type %q", in.ID, c.Type)
			}
			if c.Type == ConditionBySuccess {
				success++
			}
		}
		if success > 1 {
			return fmt.Errorf("instruction %q has %d bySuccess conditions, want at most 1", in.ID, success)
		}
	}

	if d.InstructionStart != "" && !seen[d.InstructionStart] {
		return fmt.Errorf("%w: %q", ErrNoStartInstruction, d.InstructionStart)
	}

	if path := d.DetectCycle(); len(path) > 0 {
		return fmt.Errorf("%w: %v", ErrCyclicGraph, path)
	}
	return nil
}

// DetectCycle walks the condition graph and returns the ids of one cycle,
// or nil when the graph is acyclic. Dangling references are skipped, not
// reported: they resolve to "no successor" at runtime.
func (d *Document) DetectCycle() []string {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // fully explored
	)
	color := make(map[string]int, len(d.Instructions))

	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)

		in := FindInstruction(d.Instructions, id)
		if in != nil {
			for _, c := range in.Conditions {
				next := c.NextInstructionID
				if next == "" || FindInstruction(d.Instructions, next) == nil {
					continue
				}
				switch color[next] {
				case grey:
					// Slice the current path from the repeated id onward.
					for i, sid := range stack {
						if sid == next {
							cycle = append([]string(nil), stack[i:]...)
							break
						}
					}
					return true
				case white:
					if visit(next) {
						return true
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for i := range d.Instructions {
		if color[d.Instructions[i].ID] == white {
			if visit(d.Instructions[i].ID) {
				return cycle
			}
		}
	}
	return nil
}

// VariableNames returns the declared variable namespace of the whole flow:
// every gather-field name and every declared instruction variable,
// de-duplicated, in instruction order.
func (d *Document) VariableNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for i := range d.Instructions {
		add(d.Instructions[i].GatherName())
		for _, v := range d.Instructions[i].Variables {
			add(v.Name)
		}
	}
	return names
}
