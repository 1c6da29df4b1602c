package middleware

import (
	"context"
	"regexp"

	"github.com/acopio/formflow/pkg/ports"
)

// piiMask replaces matched field values before they leave the process.
const piiMask = "***"

type piiMiddleware struct {
	next     ports.RegistrationSink
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a sink middleware that masks the values of
// registration fields whose name matches any of the patterns. The
// in-memory session keeps the real answers; only the outgoing copy is
// masked.
func NewPIIMiddleware(patternStrings []string) SinkMiddleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RegistrationSink) ports.RegistrationSink {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) SubmitRegistration(ctx context.Context, reg ports.Registration) (string, error) {
	masked := reg
	masked.Details = make([]map[string]any, len(reg.Details))

	for i, detail := range reg.Details {
		copied := make(map[string]any, len(detail))
		for k, v := range detail {
			copied[k] = v
		}
		if name, ok := detail["name"].(string); ok && m.matches(name) {
			copied["value"] = piiMask
		}
		masked.Details[i] = copied
	}

	return m.next.SubmitRegistration(ctx, masked)
}

func (m *piiMiddleware) matches(name string) bool {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
