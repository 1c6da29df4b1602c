package editor

import "github.com/acopio/formflow/pkg/domain"

// LayoutConfig configures the layered auto-layout.
type LayoutConfig struct {
	// SpacingPrimary is the horizontal distance between layers.
	SpacingPrimary float64

	// SpacingSecondary is the vertical gap between stacked nodes of the
	// same layer, added on top of each node's own height.
	SpacingSecondary float64

	// BaseHeight is the layout height of a node with no value branches.
	BaseHeight float64

	// BranchIncrement is added to a node's height per byVar condition it
	// owns: nodes with more conditional branches need more vertical room.
	BranchIncrement float64

	StartX float64
	StartY float64
}

// DefaultLayoutConfig mirrors the editor canvas defaults.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		SpacingPrimary:   300,
		SpacingSecondary: 60,
		BaseHeight:       90,
		BranchIncrement:  28,
		StartX:           0,
		StartY:           0,
	}
}

// LayoutResult holds computed positions, tagged with the state version the
// layout was issued against.
type LayoutResult struct {
	Positions map[string]domain.Position
	Levels    map[string]int
	MaxLevel  int
	Version   uint64
}

func nodeHeight(in *domain.Instruction) float64 {
	return nodeHeightWith(in, DefaultLayoutConfig())
}

func nodeHeightWith(in *domain.Instruction, cfg LayoutConfig) float64 {
	h := cfg.BaseHeight
	for _, c := range in.Conditions {
		if c.Type == domain.ConditionByVar {
			h += cfg.BranchIncrement
		}
	}
	return h
}

// ComputeLayout runs layered level assignment over the current graph:
// BFS from the start instruction, each node's level being
// max(parent levels)+1. A safety counter bounds the walk on cyclic input
// so a bad graph degrades to a partial layout instead of looping.
//
// Layout is the slow half of an async pair: callers apply the result with
// ApplyLayout, which discards it when a newer version has been published
// in the meantime.
func (g *Graph) ComputeLayout(cfg LayoutConfig) *LayoutResult {
	g.mu.Lock()
	instructions := g.doc.Instructions
	start := g.doc.InstructionStart
	version := g.version
	g.mu.Unlock()

	result := &LayoutResult{
		Positions: make(map[string]domain.Position),
		Levels:    make(map[string]int),
		Version:   version,
	}
	if len(instructions) == 0 || domain.FindInstruction(instructions, start) == nil {
		return result
	}

	// Flow adjacency: owner -> successor for every resolved condition.
	outgoing := make(map[string][]string)
	incoming := make(map[string][]string)
	for i := range instructions {
		in := &instructions[i]
		for _, c := range in.Conditions {
			next := c.NextInstructionID
			if next == "" || domain.FindInstruction(instructions, next) == nil {
				continue
			}
			outgoing[in.ID] = append(outgoing[in.ID], next)
			incoming[next] = append(incoming[next], in.ID)
		}
	}

	levels := result.Levels
	levelNodes := map[int][]string{0: {start}}
	levels[start] = 0

	queue := []string{start}
	processed := 0
	maxProcessed := len(instructions) * len(instructions)
	if maxProcessed < 10000 {
		maxProcessed = 10000
	}

	for len(queue) > 0 {
		if processed > maxProcessed {
			break
		}
		processed++

		current := queue[0]
		queue = queue[1:]

		for _, child := range outgoing[current] {
			maxParent := -1
			for _, parent := range incoming[child] {
				if lvl, ok := levels[parent]; ok && lvl > maxParent {
					maxParent = lvl
				}
			}
			childLevel := maxParent + 1

			existing, seen := levels[child]
			if seen && childLevel <= existing {
				continue
			}
			if seen {
				old := levelNodes[existing]
				for i, id := range old {
					if id == child {
						levelNodes[existing] = append(old[:i], old[i+1:]...)
						break
					}
				}
			}
			levels[child] = childLevel
			levelNodes[childLevel] = append(levelNodes[childLevel], child)
			queue = append(queue, child)
		}
	}

	for level := range levelNodes {
		if level > result.MaxLevel {
			result.MaxLevel = level
		}
	}

	// Stack each layer vertically, spacing by the nodes' own heights so
	// branch-heavy nodes get the room they need.
	for level := 0; level <= result.MaxLevel; level++ {
		x := cfg.StartX + float64(level)*cfg.SpacingPrimary
		y := cfg.StartY
		for _, id := range levelNodes[level] {
			result.Positions[id] = domain.Position{X: x, Y: y}
			in := domain.FindInstruction(instructions, id)
			if in != nil {
				y += nodeHeightWith(in, cfg) + cfg.SpacingSecondary
			} else {
				y += cfg.BaseHeight + cfg.SpacingSecondary
			}
		}
	}
	return result
}

// ApplyLayout writes computed positions back into the instructions'
// authored positions. A result computed against a superseded version is
// discarded; the caller should recompute. Returns whether it applied.
func (g *Graph) ApplyLayout(result *LayoutResult) bool {
	if result == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if result.Version != g.version {
		g.logger.Debug("discarding stale layout", "issued_at", result.Version, "version", g.version)
		return false
	}
	for i := range g.doc.Instructions {
		if pos, ok := result.Positions[g.doc.Instructions[i].ID]; ok {
			g.doc.Instructions[i].Config.Position = pos
		}
	}
	g.publishLocked()
	return true
}

// AutoLayout computes and immediately applies a layout in one step.
func (g *Graph) AutoLayout(cfg LayoutConfig) *LayoutResult {
	result := g.ComputeLayout(cfg)
	g.ApplyLayout(result)
	return result
}
