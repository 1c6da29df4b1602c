package runtime

import "github.com/acopio/formflow/pkg/domain"

// Walk derives the ordered, deduplicated visible set of a document given
// the currently captured answers (keyed by gather-field name) and the set
// of instructions whose external action has failed.
//
// The walk is depth-first from the start instruction. At each node the
// outgoing conditions are evaluated in two passes: first every byVar
// condition whose validators match the node's own captured value, then
// the bySuccess condition, which runs regardless of the first pass. A
// byUnhappy condition is followed only when the node is in the failed set.
//
// A visited set is carried through the whole traversal: re-visiting a node
// stops descent there, so an authoring-time cycle cannot recurse
// unboundedly. Dangling successor ids resolve to "no successor".
func Walk(doc *domain.Document, answers map[string]string, failed map[string]bool) []string {
	if doc == nil {
		return nil
	}

	visited := make(map[string]bool, len(doc.Instructions))
	var visible []string

	var descend func(id string)
	descend = func(id string) {
		in := domain.FindInstruction(doc.Instructions, id)
		if in == nil {
			return
		}
		if visited[id] {
			return
		}
		visited[id] = true
		visible = append(visible, id)

		answer := answers[in.GatherName()]

		// Pass 1: value branches. Every matching byVar edge is followed;
		// the flow is a tree, not necessarily a strict path.
		for _, c := range in.Conditions {
			if c.Type == domain.ConditionByVar && c.NextInstructionID != "" && c.Matches(answer) {
				descend(c.NextInstructionID)
			}
		}

		// Failure path, when the node's action is known to have failed.
		if failed[id] {
			for _, c := range in.Conditions {
				if c.Type == domain.ConditionByUnhappy && c.NextInstructionID != "" {
					descend(c.NextInstructionID)
				}
			}
		}

		// Pass 2: the default path always runs.
		if sc := in.SuccessCondition(); sc != nil && sc.NextInstructionID != "" {
			descend(sc.NextInstructionID)
		}
	}

	descend(doc.InstructionStart)
	return visible
}
