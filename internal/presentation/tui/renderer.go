package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/acopio/formflow/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style auto-detects light/dark terminal backgrounds.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PromptMarkdown builds the markdown block shown for a gather
// instruction: the field name as a heading plus its choices, when the
// field carries a closed option set.
func PromptMarkdown(in *domain.Instruction) string {
	var sb strings.Builder

	name := in.GatherName()
	if name == "" {
		name = in.ID
	}
	fmt.Fprintf(&sb, "## %s\n", name)

	if in.Gather != nil {
		if in.Gather.Optional {
			sb.WriteString("\n*optional*\n")
		}
		if len(in.Gather.Options) > 0 {
			sb.WriteString("\n")
			for _, opt := range in.Gather.Options {
				fmt.Fprintf(&sb, "- %s\n", opt.Label)
			}
		}
	}

	return sb.String()
}
