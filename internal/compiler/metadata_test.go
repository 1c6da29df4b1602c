package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow/internal/compiler"
	"github.com/acopio/formflow/pkg/domain"
)

func TestCompile_FlatInputs(t *testing.T) {
	in := &domain.Instruction{
		ID: "q1",
		Inputs: []domain.SchemaInput{
			{Name: "label", Type: domain.InputText, Value: "Producer name"},
			{Name: "max_length", Type: domain.InputNumber, Value: 120},
		},
		AdvancedInputs: []domain.SchemaInput{
			{Name: "required", Type: domain.InputBoolean, Value: true},
		},
	}

	got := compiler.Compile(in)

	assert.Equal(t, "Producer name", got["label"])
	assert.Equal(t, 120, got["max_length"])
	assert.Equal(t, true, got["required"])
}

func TestCompile_NestedDict(t *testing.T) {
	in := &domain.Instruction{
		ID: "q1",
		Inputs: []domain.SchemaInput{
			{
				Name: "validation",
				Type: domain.InputDict,
				Inputs: []domain.SchemaInput{
					{Name: "min", Type: domain.InputNumber, Value: 0},
					{
						Name: "range",
						Type: domain.InputDict,
						Inputs: []domain.SchemaInput{
							{Name: "max", Type: domain.InputNumber, Value: 500},
						},
					},
				},
			},
		},
	}

	got := compiler.Compile(in)

	validation, ok := got["validation"].(map[string]any)
	require.True(t, ok, "dict input should produce a nested object")
	assert.Equal(t, 0, validation["min"])

	rng, ok := validation["range"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 500, rng["max"])
}

func TestCompile_IncreasingList(t *testing.T) {
	in := &domain.Instruction{
		ID: "q1",
		Inputs: []domain.SchemaInput{
			{
				Name:       "crops",
				Type:       domain.InputText,
				Increasing: true,
				Value: []any{
					map[string]any{"value": "coffee"},
					map[string]any{"value": "cacao"},
				},
			},
		},
	}

	got := compiler.Compile(in)
	assert.Equal(t, []any{"coffee", "cacao"}, got["crops"])
}

func TestCompile_UnresolvedTemplateKeptLiteral(t *testing.T) {
	in := &domain.Instruction{
		ID: "q1",
		Inputs: []domain.SchemaInput{
			{Name: "hint", Type: domain.InputText, Value: "  total: {{net_weight}}  "},
		},
	}

	got := compiler.Compile(in)
	assert.Equal(t, "total: {{net_weight}}", got["hint"])
}

func TestCompile_OptionsCardinality(t *testing.T) {
	opts := []domain.Option{
		{ID: "co", Label: "Colombia"},
		{ID: "pe", Label: "Peru"},
	}

	t.Run("Select Multiple Initializes Empty Array", func(t *testing.T) {
		in := &domain.Instruction{
			Inputs: []domain.SchemaInput{
				{Name: "countries", Type: domain.InputOptions, Select: domain.SelectMultiple, Options: opts, Value: "co"},
			},
		}
		assert.Equal(t, []any{}, compiler.Compile(in)["countries"])
	})

	t.Run("Data Simple Copies Raw Value", func(t *testing.T) {
		in := &domain.Instruction{
			Inputs: []domain.SchemaInput{
				{Name: "country", Type: domain.InputOptions, Data: domain.DataSimple, Options: opts, Value: "pe"},
			},
		}
		assert.Equal(t, "pe", compiler.Compile(in)["country"])
	})

	t.Run("Data All Expands Selected Records", func(t *testing.T) {
		in := &domain.Instruction{
			Inputs: []domain.SchemaInput{
				{Name: "country", Type: domain.InputOptions, Data: domain.DataAll, Options: opts, Value: []any{"pe", "co"}},
			},
		}
		got := compiler.Compile(in)["country"].([]domain.Option)
		require.Len(t, got, 2)
		assert.Equal(t, "Peru", got[0].Label)
		assert.Equal(t, "Colombia", got[1].Label)
	})

	t.Run("Unknown Id Skipped", func(t *testing.T) {
		in := &domain.Instruction{
			Inputs: []domain.SchemaInput{
				{Name: "country", Type: domain.InputOptions, Data: domain.DataAll, Options: opts, Value: "br"},
			},
		}
		assert.Empty(t, compiler.Compile(in)["country"])
	})
}

func TestCompile_Idempotent(t *testing.T) {
	in := &domain.Instruction{
		ID: "q1",
		Inputs: []domain.SchemaInput{
			{Name: "label", Type: domain.InputText, Value: "Weight"},
			{
				Name: "validation",
				Type: domain.InputDict,
				Inputs: []domain.SchemaInput{
					{Name: "min", Type: domain.InputNumber, Value: 1},
				},
			},
		},
	}

	first := compiler.Compile(in)
	second := compiler.Compile(in)
	assert.Equal(t, first, second, "compiling twice with unchanged inputs must be structurally identical")
}

func TestCompile_NilInstruction(t *testing.T) {
	assert.Empty(t, compiler.Compile(nil))
}
