package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acopio/formflow/pkg/domain"
)

// Type defines the contract for answer validation. Implementations
// determine whether a raw answer string conforms to a value type.
type Type interface {
	// Name returns the human-readable name of the type (e.g. "number").
	Name() string
	// Validate checks if an answer conforms to this type.
	Validate(value string) error
}

// ForField returns the Type matching the field's declared value type.
// Unknown declarations fall back to free text so a schema written
// against a newer vocabulary degrades instead of rejecting everything.
func ForField(f *domain.GatherField) Type {
	switch f.ValueType {
	case domain.ValueNumber:
		return &NumberType{}
	case domain.ValueBoolean:
		return &BooleanType{}
	case domain.ValueOptions:
		values := make([]string, 0, len(f.Options))
		for _, opt := range f.Options {
			values = append(values, opt.Value)
		}
		return &OptionsType{Values: values}
	case domain.ValueEntity:
		return &EntityType{Directory: f.EntityType}
	default:
		return &TextType{}
	}
}

// TextType accepts any non-empty answer. Media references, calculator
// output and free text all validate as text.
type TextType struct{}

func (t *TextType) Name() string { return "text" }

func (t *TextType) Validate(value string) error {
	return nil
}

// NumberType validates numeric answers.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	return nil
}

// BooleanType validates yes/no answers. The accepted spellings cover
// what field devices actually send.
type BooleanType struct{}

func (t *BooleanType) Name() string { return "boolean" }

func (t *BooleanType) Validate(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "false", "yes", "no", "si", "1", "0":
		return nil
	}
	return fmt.Errorf("expected a yes/no answer, got %q", value)
}

// OptionsType validates membership in a closed choice list. Matching is
// case-insensitive, the same rule branch validators use.
type OptionsType struct {
	Values []string
}

func (t *OptionsType) Name() string { return "options" }

func (t *OptionsType) Validate(value string) error {
	for _, v := range t.Values {
		if strings.EqualFold(strings.TrimSpace(value), v) {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of the declared options", value)
}

// EntityType validates entity references. Only shape is checked here;
// existence is the lookup collaborator's concern.
type EntityType struct {
	Directory string
}

func (t *EntityType) Name() string { return "entity" }

func (t *EntityType) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("expected an entity reference")
	}
	return nil
}
