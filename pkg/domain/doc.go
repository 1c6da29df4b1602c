// Package domain contains the core data model of the form-flow engine:
// instructions (nodes), conditions (typed edges), gather fields, schema
// inputs and flow variables, plus the invariant-preserving graph operations
// shared by the runtime and the editor.
//
// The instruction list is the single source of truth for a flow. Every
// other view (the editor's node/edge projection, the runtime's visible set)
// is derived from it and never authoritative.
package domain
