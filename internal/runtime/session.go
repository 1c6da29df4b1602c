package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/acopio/formflow/internal/calc"
	"github.com/acopio/formflow/internal/compiler"
	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
	"github.com/acopio/formflow/pkg/schema"
)

// Session is one data-collection pass over a form. All mutations replace
// whole derived structures (visible set, option tables) rather than
// patching them incrementally; every published state carries a version
// used to discard stale asynchronous lookup results.
type Session struct {
	engine *Engine
	formID string
	doc    *domain.Document

	mu        sync.Mutex
	version   uint64
	answers   map[string]string
	failed    map[string]bool
	visible   []string
	options   map[string]OptionSet
	startedAt time.Time
}

// OptionSet is the auxiliary option table of one entity-typed instruction.
type OptionSet struct {
	Values           []ports.EntityItem
	Page             int
	PerPage          int
	Total            int
	FilterExpression string
}

func newSession(e *Engine, formID string, doc *domain.Document) *Session {
	return &Session{
		engine:    e,
		formID:    formID,
		doc:       doc,
		answers:   make(map[string]string),
		failed:    make(map[string]bool),
		options:   make(map[string]OptionSet),
		startedAt: time.Now(),
	}
}

// refresh re-derives calculator fields and the visible set from the
// current answers. Callers must hold no locks; refresh takes its own.
func (s *Session) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
}

func (s *Session) recomputeLocked() {
	// Calculator fields first, so branches on computed values see the
	// fresh result.
	for i := range s.doc.Instructions {
		g := s.doc.Instructions[i].Gather
		if g == nil || g.ValueType != domain.ValueCalculator || g.Expression == "" {
			continue
		}
		s.answers[g.Name] = calc.Evaluate(g.Expression, s.answers)
	}
	s.visible = Walk(s.doc, s.answers, s.failed)
}

// SetValue captures a value for a gather field, re-derives the visible set
// and calculator fields, and refetches the option lists of entity fields
// whose filter expression references the changed field.
func (s *Session) SetValue(ctx context.Context, name, value string) {
	s.mu.Lock()
	s.answers[name] = value
	s.version++
	s.recomputeLocked()
	dependents := s.dependentEntityFieldsLocked(name)
	s.mu.Unlock()

	for _, id := range dependents {
		if err := s.RefreshOptions(ctx, id); err != nil {
			s.engine.logger.Warn("entity option refetch failed", "instruction", id, "err", err)
		}
	}
}

// dependentEntityFieldsLocked returns the instruction ids of entity fields
// whose filter expression contains a {{name}} placeholder.
func (s *Session) dependentEntityFieldsLocked(name string) []string {
	var ids []string
	for i := range s.doc.Instructions {
		in := &s.doc.Instructions[i]
		if in.Gather == nil || in.Gather.ValueType != domain.ValueEntity {
			continue
		}
		for _, tok := range calc.Tokens(in.Gather.FilterExpression) {
			if tok == name {
				ids = append(ids, in.ID)
				break
			}
		}
	}
	return ids
}

// Value returns the captured value of a gather field.
func (s *Session) Value(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[name]
}

// Answers returns a copy of all captured values.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// MarkFailed records that an instruction's external action failed, which
// opens its byUnhappy path on the next derivation.
func (s *Session) MarkFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = true
	s.version++
	s.recomputeLocked()
}

// VisibleSet returns the ordered, deduplicated ids of the instructions
// currently visible to the user.
func (s *Session) VisibleSet() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visible...)
}

// VisibleInstructions resolves the visible set to instructions.
func (s *Session) VisibleInstructions() []domain.Instruction {
	ids := s.VisibleSet()
	out := make([]domain.Instruction, 0, len(ids))
	for _, id := range ids {
		if in := domain.FindInstruction(s.doc.Instructions, id); in != nil {
			out = append(out, *in)
		}
	}
	return out
}

// Options returns the current option table of an entity instruction.
func (s *Session) Options(instructionID string) (OptionSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.options[instructionID]
	return set, ok
}

// RefreshOptions fetches one page of entity options for an instruction.
// The request is tagged with the session version it was issued against;
// a result arriving after a newer version has been published is discarded
// rather than applied. Lookup failures degrade to an empty option list
// and are logged here, not surfaced to the caller.
func (s *Session) RefreshOptions(ctx context.Context, instructionID string) error {
	in := domain.FindInstruction(s.doc.Instructions, instructionID)
	if in == nil || in.Gather == nil || in.Gather.ValueType != domain.ValueEntity {
		return fmt.Errorf("instruction %q has no entity field", instructionID)
	}
	if s.engine.lookup == nil {
		return nil
	}

	s.mu.Lock()
	issuedAt := s.version
	filter, _ := calc.Substitute(in.Gather.FilterExpression, s.answers)
	s.mu.Unlock()

	page, err := s.engine.lookup.LookupEntities(ctx, ports.EntityQuery{
		EntityType: in.Gather.EntityType,
		Page:       1,
		PerPage:    s.engine.perPage,
		Filter:     filter,
	})
	if err != nil {
		// Non-fatal: the field shows an empty list.
		s.engine.logger.Warn("entity lookup failed", "instruction", instructionID, "err", err)
		page = ports.EntityPage{Page: 1, PerPage: s.engine.perPage}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != issuedAt {
		// A newer edit superseded this request; ignore the response.
		s.engine.logger.Debug("discarding stale option lookup", "instruction", instructionID, "issued_at", issuedAt, "version", s.version)
		return nil
	}
	s.options[instructionID] = OptionSet{
		Values:           page.Items,
		Page:             page.Page,
		PerPage:          page.PerPage,
		Total:            page.Total,
		FilterExpression: filter,
	}
	return nil
}

// ValidationError carries the field-scoped errors of a validation pass.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(names, ", "))
}

// RunTool executes the external action of an instruction with the
// answers captured so far as arguments. A failed run marks the
// instruction failed, which activates its unhappy-path branches on the
// next derivation.
func (s *Session) RunTool(ctx context.Context, instructionID string) (any, error) {
	in := domain.FindInstruction(s.doc.Instructions, instructionID)
	if in == nil {
		return nil, fmt.Errorf("unknown instruction %q", instructionID)
	}
	if in.Config.Tool == "" {
		return nil, fmt.Errorf("instruction %q has no tool", instructionID)
	}
	if s.engine.tools == nil {
		return nil, fmt.Errorf("no tool registry configured")
	}

	args := make(map[string]any)
	for name, value := range s.Answers() {
		args[name] = value
	}

	result, err := s.engine.tools.Execute(ctx, in.Config.Tool, args)
	if err != nil {
		s.engine.logger.Warn("tool run failed", "instruction", instructionID, "tool", in.Config.Tool, "err", err)
		s.MarkFailed(instructionID)
		return nil, err
	}
	return result, nil
}

// Validate runs the pre-submission pass over the visible set. Required
// fields must be non-empty and answered values must conform to their
// declared type; unique fields are additionally checked against the
// backend one by one. An exists=true marks the field invalid and checking
// continues with the rest. The returned map is keyed by gather-field name
// and empty when the pass succeeds.
func (s *Session) Validate(ctx context.Context) map[string]string {
	errs := make(map[string]string)

	for _, in := range s.VisibleInstructions() {
		g := in.Gather
		if g == nil {
			continue
		}
		value := s.Value(g.Name)

		if value == "" {
			if !g.Optional {
				errs[g.Name] = "required"
			}
			continue
		}

		if err := schema.ForField(g).Validate(value); err != nil {
			errs[g.Name] = err.Error()
			continue
		}

		if g.Unique && s.engine.unique != nil {
			exists, err := s.engine.unique.ValidateUniqueField(ctx, ports.UniqueCheck{
				FieldName:  g.Name,
				EntityName: g.EntityType,
				Value:      value,
				FormID:     s.formID,
			})
			if err != nil {
				s.engine.logger.Warn("uniqueness check failed", "field", g.Name, "err", err)
				continue
			}
			if exists {
				errs[g.Name] = "already exists"
			}
		}
	}
	return errs
}

// Submit validates the visible set, compiles the field detail list and
// hands the registration to the sink. Validation failures are returned as
// a *ValidationError and do not abort future attempts.
func (s *Session) Submit(ctx context.Context) (string, error) {
	if errs := s.Validate(ctx); len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}
	if s.engine.sink == nil {
		return "", fmt.Errorf("no registration sink configured")
	}

	var details []map[string]any
	for _, in := range s.VisibleInstructions() {
		if in.Gather == nil {
			continue
		}
		detail := compiler.Compile(&in)
		detail["name"] = in.Gather.Name
		detail["value"] = s.Value(in.Gather.Name)
		detail["value_type"] = in.Gather.ValueType
		details = append(details, detail)
	}

	id, err := s.engine.sink.SubmitRegistration(ctx, ports.Registration{
		FormID:   s.formID,
		SchemaID: s.doc.ModuleID,
		Details:  details,
		Duration: time.Since(s.startedAt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit registration: %w", err)
	}
	return id, nil
}
