// Package runtime interprets a persisted schema document at
// data-collection time: it derives the set of visible instructions from
// the captured answers, keeps calculator fields and entity option lists in
// sync, validates the visible set and submits completed registrations.
package runtime

import (
	"log/slog"

	"github.com/acopio/formflow/internal/logging"
	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
	"github.com/acopio/formflow/pkg/registry"
)

// Engine is the runtime interpreter. It is stateless across forms; per
// capture state lives in a Session.
type Engine struct {
	logger  *slog.Logger
	lookup  ports.EntityLookup
	unique  ports.UniquenessChecker
	sink    ports.RegistrationSink
	tools   *registry.Registry
	perPage int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEntityLookup wires the collaborator used for entity-typed fields.
func WithEntityLookup(lookup ports.EntityLookup) EngineOption {
	return func(e *Engine) { e.lookup = lookup }
}

// WithUniquenessChecker wires the collaborator used for unique fields.
func WithUniquenessChecker(unique ports.UniquenessChecker) EngineOption {
	return func(e *Engine) { e.unique = unique }
}

// WithRegistrationSink wires the collaborator that persists completed
// registrations.
func WithRegistrationSink(sink ports.RegistrationSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithToolRegistry wires the registry of external actions instructions
// can trigger.
func WithToolRegistry(tools *registry.Registry) EngineOption {
	return func(e *Engine) { e.tools = tools }
}

// WithPageSize sets the page size for entity lookups.
func WithPageSize(perPage int) EngineOption {
	return func(e *Engine) {
		if perPage > 0 {
			e.perPage = perPage
		}
	}
}

// NewEngine creates a runtime engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:  logging.NewNop(),
		perPage: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Begin starts a data-collection session over a schema document. A
// missing start id is not an engine error; it simply yields an empty
// visible set.
func (e *Engine) Begin(formID string, doc *domain.Document) *Session {
	s := newSession(e, formID, doc)
	s.refresh()
	return s
}
