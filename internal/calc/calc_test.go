package calc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acopio/formflow/internal/calc"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, calc.Tokens("{{a}} + {{b}}"))
	assert.Equal(t, []string{"net_weight", "net_weight"}, calc.Tokens("{{net_weight}} * {{net_weight}}"))
	assert.Empty(t, calc.Tokens("no tokens here"))
	assert.Equal(t, []string{"a"}, calc.Tokens("{{ a }} + {{}}"))
}

func TestSubstitute(t *testing.T) {
	t.Run("Full Resolution", func(t *testing.T) {
		s, unresolved := calc.Substitute("{{a}} + {{b}}", map[string]string{"a": "2", "b": "3"})
		assert.Equal(t, "2 + 3", s)
		assert.False(t, unresolved)
	})

	t.Run("Missing Value Keeps Token", func(t *testing.T) {
		s, unresolved := calc.Substitute("{{a}} + {{b}}", map[string]string{"a": "2"})
		assert.Equal(t, "2 + {{b}}", s)
		assert.True(t, unresolved)
	})

	t.Run("Empty Value Keeps Token", func(t *testing.T) {
		_, unresolved := calc.Substitute("{{a}}", map[string]string{"a": "  "})
		assert.True(t, unresolved)
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{"Addition", "{{a}} + {{b}}", map[string]string{"a": "2", "b": "3"}, "5"},
		{"Precedence", "{{a}} + {{b}} * 2", map[string]string{"a": "2", "b": "3"}, "8"},
		{"Parentheses", "({{a}} + {{b}}) * 2", map[string]string{"a": "2", "b": "3"}, "10"},
		{"Division", "{{total}} / {{count}}", map[string]string{"total": "7", "count": "2"}, "3.5"},
		{"Cleared Value Reverts To Empty", "{{a}} + {{b}}", map[string]string{"a": "2", "b": ""}, ""},
		{"Missing Value", "{{a}} + {{b}}", map[string]string{"a": "2"}, ""},
		{"Malformed Fails Closed", "{{a}} +* {{b}}", map[string]string{"a": "2", "b": "3"}, ""},
		{"Non-Numeric Fails Closed", "{{a}} + {{b}}", map[string]string{"a": "dos", "b": "3"}, ""},
		{"Empty Template", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Evaluate(tt.template, tt.values))
		})
	}
}
