package schema

import (
	"github.com/acopio/formflow/pkg/domain"
)

// ValidateAnswers checks every answered field of the instruction list
// against its declared value type. Empty answers are skipped; required-ness
// is the runtime's concern, not a type property.
func ValidateAnswers(instructions []domain.Instruction, answers map[string]string) error {
	var errs []error

	for i := range instructions {
		g := instructions[i].Gather
		if g == nil || g.Name == "" {
			continue
		}
		value, ok := answers[g.Name]
		if !ok || value == "" {
			continue
		}
		if err := ForField(g).Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    g.Name,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
