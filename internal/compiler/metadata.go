// Package compiler turns an instruction's nested schema-input tree into
// the flat/nested metadata payload persisted alongside the instruction and
// consumed at data-collection time.
//
// Processing uses an explicit work stack instead of recursion: dict inputs
// push their children annotated with an accumulated location path, so
// depth is bounded by the stack, not the goroutine stack.
package compiler

import (
	"regexp"
	"strings"

	"github.com/acopio/formflow/pkg/domain"
)

var templatePattern = regexp.MustCompile(`\{\{\s*[A-Za-z_][A-Za-z0-9_]*\s*\}\}`)

type workItem struct {
	input    domain.SchemaInput
	location []string
}

// Compile produces the metadata object for one instruction. The output is
// independent of every other instruction and structurally identical across
// repeated calls with unchanged inputs.
func Compile(in *domain.Instruction) map[string]any {
	result := make(map[string]any)
	if in == nil {
		return result
	}

	var stack []workItem
	push := func(inputs []domain.SchemaInput, location []string) {
		// Reverse push so the LIFO pops in authored order.
		for i := len(inputs) - 1; i >= 0; i-- {
			stack = append(stack, workItem{input: inputs[i], location: location})
		}
	}
	push(in.AdvancedInputs, nil)
	push(in.Inputs, nil)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.input.Type == domain.InputDict {
			child := make([]string, len(item.location), len(item.location)+1)
			copy(child, item.location)
			child = append(child, item.input.Name)
			push(item.input.Inputs, child)
			continue
		}

		write(result, item.location, item.input.Name, compileValue(item.input))
	}
	return result
}

// compileValue resolves one leaf input into its persisted value.
func compileValue(input domain.SchemaInput) any {
	if input.Type == domain.InputOptions {
		return compileOptions(input)
	}

	if input.Increasing {
		if rows, ok := listRows(input.Value); ok {
			return rows
		}
	}

	if s, ok := input.Value.(string); ok && templatePattern.MatchString(s) {
		// Unresolved templates are persisted as the literal, trimmed.
		return strings.TrimSpace(s)
	}

	return input.Value
}

func compileOptions(input domain.SchemaInput) any {
	if input.Select == domain.SelectMultiple {
		return []any{}
	}
	switch input.Data {
	case domain.DataAll:
		return expandOptions(input)
	default: // domain.DataSimple and unset
		return input.Value
	}
}

// expandOptions cross-references selected ids into full option records.
func expandOptions(input domain.SchemaInput) []domain.Option {
	var ids []string
	switch v := input.Value.(type) {
	case string:
		if v != "" {
			ids = []string{v}
		}
	case []string:
		ids = v
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				ids = append(ids, s)
			}
		}
	}

	records := make([]domain.Option, 0, len(ids))
	for _, id := range ids {
		for _, opt := range input.Options {
			if opt.ID == id {
				records = append(records, opt)
				break
			}
		}
	}
	return records
}

// listRows flattens an increasing input's array value to the .value
// sub-field of each row.
func listRows(value any) ([]any, bool) {
	rows, ok := value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		switch r := row.(type) {
		case map[string]any:
			out = append(out, r["value"])
		case domain.SchemaInput:
			out = append(out, r.Value)
		default:
			out = append(out, r)
		}
	}
	return out, true
}

// write places a value at location.name, creating nested maps along the
// location path.
func write(result map[string]any, location []string, name string, value any) {
	cursor := result
	for _, step := range location {
		next, ok := cursor[step].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cursor[step] = next
		}
		cursor = next
	}
	cursor[name] = value
}
