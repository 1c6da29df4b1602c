// Package middleware wraps the persistence collaborators with orthogonal
// behavior: schema encryption at rest and PII masking on outgoing
// registrations.
package middleware

import "github.com/acopio/formflow/pkg/ports"

// Middleware allows wrapping a SchemaStore to add behavior.
type Middleware func(ports.SchemaStore) ports.SchemaStore

// SinkMiddleware allows wrapping a RegistrationSink to add behavior.
type SinkMiddleware func(ports.RegistrationSink) ports.RegistrationSink

// Chain applies store middlewares right to left, so the first listed
// middleware is the outermost.
func Chain(store ports.SchemaStore, mws ...Middleware) ports.SchemaStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
