// Package editor maintains the visual editing state of a schema document:
// a node array (one per instruction, carrying the authored canvas
// position) and an edge array (one per resolved condition), both fully
// regenerated from the instruction list whenever it changes.
//
// The instruction list is the single source of truth. Edits mutate it
// through whole-structure replacement and the projection is rebuilt, never
// patched, so the view cannot drift from the model.
package editor

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/acopio/formflow/internal/logging"
	"github.com/acopio/formflow/pkg/domain"
)

// Node is the visual projection of one instruction.
type Node struct {
	ID       string
	Position domain.Position

	// Height is the layout height: a fixed base plus an increment per
	// byVar condition the instruction owns.
	Height float64
}

// Edge is the visual projection of one resolved, non-empty condition. It
// points from the referenced instruction into the condition slot (handle)
// of the node that owns the condition.
type Edge struct {
	ID           string
	Source       string
	Target       string
	TargetHandle string
}

// Graph is the editor state machine over one document.
type Graph struct {
	mu      sync.Mutex
	doc     *domain.Document
	nodes   []Node
	edges   []Edge
	version uint64
	logger  *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGraph builds the editor state for a document and derives the initial
// projection.
func NewGraph(doc *domain.Document, opts ...Option) *Graph {
	g := &Graph{
		doc:    doc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.mu.Lock()
	g.rebuildLocked()
	g.mu.Unlock()
	return g
}

// rebuildLocked regenerates nodes and edges from the instruction list.
func (g *Graph) rebuildLocked() {
	nodes := make([]Node, 0, len(g.doc.Instructions))
	var edges []Edge

	for i := range g.doc.Instructions {
		in := &g.doc.Instructions[i]
		nodes = append(nodes, Node{
			ID:       in.ID,
			Position: in.Config.Position,
			Height:   nodeHeight(in),
		})
		for _, c := range in.Conditions {
			if c.NextInstructionID == "" {
				continue
			}
			edges = append(edges, Edge{
				ID:           fmt.Sprintf("e-%s-%s", c.NextInstructionID, c.ID),
				Source:       c.NextInstructionID,
				Target:       in.ID,
				TargetHandle: c.ID,
			})
		}
	}

	g.nodes = nodes
	g.edges = edges
}

// Nodes returns a copy of the current node projection.
func (g *Graph) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of the current edge projection.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge(nil), g.edges...)
}

// Document returns the underlying document.
func (g *Graph) Document() *domain.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.doc
}

// Version returns the current state version. Asynchronous work (layout,
// lookups) issued against an older version must be discarded.
func (g *Graph) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Connect resolves a user drawing an edge: the target instruction's
// condition identified by the handle is pointed at the source instruction.
func (g *Graph) Connect(source, target, targetHandle string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cond, err := g.findConditionLocked(target, targetHandle)
	if err != nil {
		return err
	}
	cond.NextInstructionID = source
	g.publishLocked()
	return nil
}

// Disconnect is the inverse of Connect: the owning condition's successor
// is cleared back to empty.
func (g *Graph) Disconnect(target, targetHandle string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cond, err := g.findConditionLocked(target, targetHandle)
	if err != nil {
		return err
	}
	cond.NextInstructionID = ""
	g.publishLocked()
	return nil
}

// MoveNode persists a new authored position. No other state changes.
func (g *Graph) MoveNode(id string, pos domain.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	in := domain.FindInstruction(g.doc.Instructions, id)
	if in == nil {
		return fmt.Errorf("unknown instruction %q", id)
	}
	in.Config.Position = pos
	g.publishLocked()
	return nil
}

// AddInstruction appends a fresh instruction with a generated id and a
// single unresolved bySuccess condition, returning the new id.
func (g *Graph) AddInstruction(gather *domain.GatherField, pos domain.Position) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := uuid.NewString()
	g.doc.Instructions = append(g.doc.Instructions, domain.Instruction{
		ID:     id,
		Config: domain.Config{Position: pos, IsGather: gather != nil},
		Gather: gather,
		Conditions: []domain.Condition{
			{ID: uuid.NewString(), Type: domain.ConditionBySuccess},
		},
	})
	g.publishLocked()
	return id
}

// RemoveInstruction removes an instruction and repairs the bySuccess
// chain so the predecessor points past the removed node.
func (g *Graph) RemoveInstruction(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	index := -1
	for i := range g.doc.Instructions {
		if g.doc.Instructions[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("unknown instruction %q", id)
	}

	g.doc.Instructions = domain.SpliceInstruction(g.doc.Instructions, index)
	if g.doc.InstructionStart == id {
		g.doc.InstructionStart = ""
	}
	g.publishLocked()
	return nil
}

func (g *Graph) findConditionLocked(instructionID, conditionID string) (*domain.Condition, error) {
	in := domain.FindInstruction(g.doc.Instructions, instructionID)
	if in == nil {
		return nil, fmt.Errorf("unknown instruction %q", instructionID)
	}
	for i := range in.Conditions {
		if in.Conditions[i].ID == conditionID {
			return &in.Conditions[i], nil
		}
	}
	return nil, fmt.Errorf("instruction %q has no condition %q", instructionID, conditionID)
}

// publishLocked bumps the state version and rebuilds the projection.
func (g *Graph) publishLocked() {
	g.version++
	g.rebuildLocked()
}
