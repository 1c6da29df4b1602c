/*
Package ports defines the driven ports (interfaces) of the form-flow
engine.

These interfaces decouple the engine from the backend it collects data
for: entity lookups, uniqueness checks, registration submission, schema
persistence and distributed edit locking are all external capabilities the
engine invokes, never implements.

# Key Interfaces

  - EntityLookup: pages through registered entities for entity-typed
    gather fields.
  - UniquenessChecker: asks the backend whether a value already exists.
  - RegistrationSink: persists a completed data-collection pass.
  - SchemaStore: saves and loads instruction-graph documents.
  - DistributedLocker: coordinates concurrent schema editing across
    replicas.
*/
package ports
