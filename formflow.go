// Package formflow provides a dynamic form-flow engine for multi-step
// data collection. A form schema is a graph of instructions connected by
// typed conditions; the engine compiles instruction metadata, evaluates
// calculated fields, derives the visible path through the graph for a set
// of answers and supports interactive editing with automatic layout.
package formflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acopio/formflow/internal/compiler"
	"github.com/acopio/formflow/internal/editor"
	"github.com/acopio/formflow/internal/logging"
	"github.com/acopio/formflow/internal/runtime"
	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
	"github.com/acopio/formflow/pkg/registry"
)

// Version is the release identifier reported by clients and the CLI.
const Version = "0.3.0"

// Session is an in-progress data collection run. See runtime.Session for
// the full method set.
type Session = runtime.Session

// ValidationError reports the fields that failed answer validation.
type ValidationError = runtime.ValidationError

// Engine is the high-level entry point. It ties schema persistence to the
// collection runtime and hands out editing surfaces for stored schemas.
type Engine struct {
	store  ports.SchemaStore
	locker ports.DistributedLocker
	logger *slog.Logger

	runtimeOpts []runtime.EngineOption
	runtime     *runtime.Engine

	lockTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger shared by the engine and every
// session it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSchemaStore sets the backend used to persist and load form schemas.
func WithSchemaStore(store ports.SchemaStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker guards schema writes with a distributed lock so concurrent
// editors of the same form cannot interleave saves.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithEntityLookup sets the directory that backs entity-typed fields.
func WithEntityLookup(lookup ports.EntityLookup) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithEntityLookup(lookup))
	}
}

// WithUniquenessChecker sets the service consulted for fields marked unique.
func WithUniquenessChecker(checker ports.UniquenessChecker) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithUniquenessChecker(checker))
	}
}

// WithRegistrationSink sets the destination for submitted registrations.
func WithRegistrationSink(sink ports.RegistrationSink) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRegistrationSink(sink))
	}
}

// WithToolRegistry sets the registry of external actions instructions
// can trigger.
func WithToolRegistry(tools *registry.Registry) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithToolRegistry(tools))
	}
}

// WithPageSize sets how many entities a single lookup page holds.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPageSize(n))
	}
}

// WithLockTimeout bounds how long PersistSchema waits for the form lock.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.lockTimeout = d
	}
}

// New initializes an Engine. A schema store is required; every other
// collaborator is optional and degrades to a no-op.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{lockTimeout: 5 * time.Second}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		return nil, fmt.Errorf("a schema store is required")
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	runtimeOpts := append([]runtime.EngineOption{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(runtimeOpts...)

	return eng, nil
}

// PersistSchema validates and stores a schema document under the given
// form. When a locker is configured the write runs under a per-form lock.
func (e *Engine) PersistSchema(ctx context.Context, formID string, doc *domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("invalid schema for form %s: %w", formID, err)
	}

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "schema:"+formID, e.lockTimeout)
		if err != nil {
			return "", fmt.Errorf("locking form %s: %w", formID, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.Warn("releasing schema lock", "form_id", formID, "error", err)
			}
		}()
	}

	return e.store.SaveSchema(ctx, formID, doc)
}

// LoadSchema fetches the stored schema for a form.
func (e *Engine) LoadSchema(ctx context.Context, formID string) (*domain.Document, error) {
	return e.store.LoadSchema(ctx, formID)
}

// Collect loads the schema for a form and begins a collection session
// over it.
func (e *Engine) Collect(ctx context.Context, formID string) (*Session, error) {
	doc, err := e.store.LoadSchema(ctx, formID)
	if err != nil {
		return nil, err
	}
	return e.runtime.Begin(formID, doc), nil
}

// CollectDocument begins a collection session over an in-memory document,
// bypassing the store. Useful for previews of unsaved schemas.
func (e *Engine) CollectDocument(formID string, doc *domain.Document) *Session {
	return e.runtime.Begin(formID, doc)
}

// Edit opens an editing surface over a document. Mutations operate on a
// private copy; read the result back with Graph.Document.
func (e *Engine) Edit(doc *domain.Document) *editor.Graph {
	return editor.NewGraph(doc, editor.WithLogger(e.logger))
}

// CompileMetadata resolves an instruction's dict-style inputs into the
// nested metadata map consumed by renderers.
func (e *Engine) CompileMetadata(in *domain.Instruction) map[string]any {
	return compiler.Compile(in)
}
