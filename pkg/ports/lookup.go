package ports

import "context"

// EntityQuery describes one page of an entity lookup for an entity-typed
// gather field.
type EntityQuery struct {
	EntityType string
	Page       int
	PerPage    int
	SortField  string
	SortOrder  string
	Search     string

	// Representative narrows the lookup to the value of the entity's
	// representative field.
	Representative string

	// Filter is the field's filter expression with all {{placeholder}}
	// tokens already substituted.
	Filter string
}

// EntityPage is one page of lookup results.
type EntityPage struct {
	Items   []EntityItem
	Page    int
	PerPage int
	Total   int
}

// EntityItem is one entity option offered to the user.
type EntityItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// EntityLookup pages through registered entities. Implementations wrap the
// backend API; failures should be returned, not hidden. The engine
// degrades them to empty option lists itself.
type EntityLookup interface {
	LookupEntities(ctx context.Context, q EntityQuery) (EntityPage, error)
}

// UniqueCheck identifies one uniqueness probe against the backend.
type UniqueCheck struct {
	FieldName  string
	EntityName string
	Value      string
	FormID     string
}

// UniquenessChecker reports whether a value already exists. Checks are
// issued sequentially by the engine; implementations need not batch.
type UniquenessChecker interface {
	ValidateUniqueField(ctx context.Context, check UniqueCheck) (exists bool, err error)
}
