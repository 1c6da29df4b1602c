package domain

import "errors"

// ErrSchemaNotFound is returned when a schema document cannot be found in
// the store.
var ErrSchemaNotFound = errors.New("schema not found")

// ErrNoStartInstruction is returned when a document's start id does not
// resolve to any instruction.
var ErrNoStartInstruction = errors.New("start instruction not found")

// ErrCyclicGraph is returned when a document's condition graph contains a
// cycle. Cyclic schemas are rejected at save time.
var ErrCyclicGraph = errors.New("condition graph contains a cycle")
