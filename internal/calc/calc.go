// Package calc keeps calculator gather fields in sync with the values of
// other captured fields. A calculator field owns an arithmetic template
// such as "{{net_weight}} * {{price_per_kg}}"; whenever any captured value
// changes, the template is re-substituted and, once fully resolved,
// evaluated as an arithmetic expression.
package calc

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Tokens extracts every {{name}} token from a template, in order of
// appearance, duplicates included.
func Tokens(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Substitute replaces each token whose name has a non-empty value in
// values, leaving unmatched tokens untouched. It reports whether the
// result still contains unresolved tokens.
func Substitute(template string, values map[string]string) (s string, unresolved bool) {
	s = tokenPattern.ReplaceAllStringFunc(template, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		if v, ok := values[name]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return tok
	})
	return s, tokenPattern.MatchString(s)
}

// Evaluate resolves a calculator template against the captured values and
// returns the numeric result as a string. It fails closed: unresolved
// tokens, malformed expressions and non-numeric results all yield "".
func Evaluate(template string, values map[string]string) string {
	substituted, unresolved := Substitute(template, values)
	if unresolved || strings.TrimSpace(substituted) == "" {
		return ""
	}

	out, err := expr.Eval(substituted, nil)
	if err != nil {
		return ""
	}
	return formatNumber(out)
}

func formatNumber(v any) string {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return ""
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
