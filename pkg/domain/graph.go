package domain

// FindInstruction returns a pointer into list for the given id, or nil.
func FindInstruction(list []Instruction, id string) *Instruction {
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// ResolveSuccessor returns the id of the next instruction after in, given
// the value just captured for it, or "" if the node is terminal.
//
// Matching byVar conditions win over the bySuccess default. A condition
// referencing a removed instruction resolves to "no successor" rather than
// failing: dangling ids are a normal consequence of editing.
func ResolveSuccessor(list []Instruction, in *Instruction, answer string) string {
	if in == nil {
		return ""
	}
	for _, c := range in.Conditions {
		if c.Type != ConditionByVar || c.NextInstructionID == "" {
			continue
		}
		if c.Matches(answer) && FindInstruction(list, c.NextInstructionID) != nil {
			return c.NextInstructionID
		}
	}
	if sc := in.SuccessCondition(); sc != nil && sc.NextInstructionID != "" {
		if FindInstruction(list, sc.NextInstructionID) != nil {
			return sc.NextInstructionID
		}
	}
	return ""
}

// SpliceInstruction removes the instruction at index and repairs the
// bySuccess chain: the predecessor whose success edge pointed at the
// removed node is re-pointed at the removed node's own success target, or
// cleared when it had none. The input slice is not mutated; callers own
// persistence of the returned list.
func SpliceInstruction(list []Instruction, index int) []Instruction {
	if index < 0 || index >= len(list) {
		return list
	}
	removed := list[index]

	successor := ""
	if sc := removed.SuccessCondition(); sc != nil {
		successor = sc.NextInstructionID
	}

	out := make([]Instruction, 0, len(list)-1)
	for i := range list {
		if i == index {
			continue
		}
		in := list[i]
		in.Conditions = append([]Condition(nil), list[i].Conditions...)
		for j := range in.Conditions {
			if in.Conditions[j].Type == ConditionBySuccess && in.Conditions[j].NextInstructionID == removed.ID {
				in.Conditions[j].NextInstructionID = successor
			}
		}
		out = append(out, in)
	}
	return out
}
