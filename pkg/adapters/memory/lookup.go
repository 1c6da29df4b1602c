package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/acopio/formflow/pkg/ports"
)

// Entity is one record of an in-memory entity collection. Fields holds
// the attribute values filter expressions match against.
type Entity struct {
	ID     string
	Label  string
	Fields map[string]string
}

// Directory implements ports.EntityLookup and ports.UniquenessChecker
// over in-memory entity collections, keyed by entity type.
type Directory struct {
	mu       sync.RWMutex
	entities map[string][]Entity
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{entities: make(map[string][]Entity)}
}

// Add registers entities under a type.
func (d *Directory) Add(entityType string, entities ...Entity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entities[entityType] = append(d.entities[entityType], entities...)
}

// LookupEntities pages through a collection, applying the query's search
// term and filter expression ("field=value" pairs joined by "&").
func (d *Directory) LookupEntities(ctx context.Context, q ports.EntityQuery) (ports.EntityPage, error) {
	d.mu.RLock()
	all := d.entities[q.EntityType]
	d.mu.RUnlock()

	var matched []ports.EntityItem
	for _, e := range all {
		if q.Search != "" && !strings.Contains(strings.ToLower(e.Label), strings.ToLower(q.Search)) {
			continue
		}
		if !matchFilter(e, q.Filter) {
			continue
		}
		matched = append(matched, ports.EntityItem{ID: e.ID, Label: e.Label})
	}

	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = len(matched)
	}

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	return ports.EntityPage{
		Items:   matched[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   len(matched),
	}, nil
}

func matchFilter(e Entity, filter string) bool {
	if filter == "" {
		return true
	}
	for _, clause := range strings.Split(filter, "&") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			continue
		}
		field, want := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if !strings.EqualFold(e.Fields[field], want) {
			return false
		}
	}
	return true
}

// ValidateUniqueField reports whether any entity of the checked
// collection already carries the value in the checked field.
func (d *Directory) ValidateUniqueField(ctx context.Context, check ports.UniqueCheck) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entities[check.EntityName] {
		if strings.EqualFold(e.Fields[check.FieldName], check.Value) {
			return true, nil
		}
	}
	return false, nil
}
