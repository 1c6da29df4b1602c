package ports

import (
	"context"
	"time"

	"github.com/acopio/formflow/pkg/domain"
)

// Registration is a completed data-collection pass ready for persistence.
type Registration struct {
	FormID   string
	SchemaID string

	// Details is the compiled field detail list: one metadata object per
	// visible instruction, keyed by gather-field name.
	Details []map[string]any

	// Duration is how long the capture took end to end.
	Duration time.Duration
}

// RegistrationSink persists completed registrations and returns the new
// record's id.
type RegistrationSink interface {
	SubmitRegistration(ctx context.Context, reg Registration) (id string, err error)
}

// SchemaStore saves and loads instruction-graph documents keyed by form
// id. Load returns domain.ErrSchemaNotFound for unknown forms.
type SchemaStore interface {
	SaveSchema(ctx context.Context, formID string, doc *domain.Document) (id string, err error)
	LoadSchema(ctx context.Context, formID string) (*domain.Document, error)
	DeleteSchema(ctx context.Context, formID string) error
}

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates concurrent schema editing across engine
// replicas: two agents must not publish conflicting versions of the same
// form.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired, the context is
	// canceled, or the TTL expires. The returned UnlockFunc MUST be
	// called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
