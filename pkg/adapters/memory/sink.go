package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/acopio/formflow/pkg/ports"
)

// Ledger is an in-memory registration sink. Submissions are assigned a
// uuid and kept in arrival order.
type Ledger struct {
	mu      sync.Mutex
	entries []ports.Registration
	ids     []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// SubmitRegistration records the registration and returns its id.
func (l *Ledger) SubmitRegistration(ctx context.Context, reg ports.Registration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	l.entries = append(l.entries, reg)
	l.ids = append(l.ids, id)
	return id, nil
}

// Registrations returns a copy of every recorded registration.
func (l *Ledger) Registrations() []ports.Registration {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ports.Registration, len(l.entries))
	copy(out, l.entries)
	return out
}
