package graph

import (
	"fmt"
	"strings"

	"github.com/acopio/formflow/pkg/domain"
)

// Overlay contains dynamic state to highlight on the rendered graph.
type Overlay struct {
	Visible []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart from an instruction graph.
// It applies semantic styling:
// - Start instruction: ((Circle))
// - Tool instruction: [[Subroutine]]
// - Gather instruction: [/Parallelogram/]
// - Default: [Rectangle]
// Condition edges carry their validator summary as the arrow label;
// unhappy-path edges are dotted.
func GenerateMermaid(doc *domain.Document, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, in := range doc.Instructions {
		safeID := sanitizeMermaidID(in.ID)

		opener, closer := "[", "]"
		switch {
		case in.ID == doc.InstructionStart:
			opener, closer = "((", "))"
		case in.Config.Tool != "":
			opener, closer = "[[", "]]"
		case in.Config.IsGather:
			opener, closer = "[/", "/]"
		}

		label := in.ID
		if name := in.GatherName(); name != "" {
			label = fmt.Sprintf("%s <br/> %s", in.ID, name)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, cond := range in.Conditions {
			if cond.NextInstructionID == "" {
				continue
			}
			safeTo := sanitizeMermaidID(cond.NextInstructionID)

			arrow := "-->"
			if cond.Type == domain.ConditionByUnhappy {
				arrow = "-.->"
			}
			if label := conditionLabel(cond); label != "" {
				// Escape double quotes for Mermaid labels.
				safe := strings.ReplaceAll(label, "\"", "'")
				arrow = fmt.Sprintf("-- \"%s\" -->", safe)
				if cond.Type == domain.ConditionByUnhappy {
					arrow = fmt.Sprintf("-. \"%s\" .->", safe)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef visible fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visible {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visible;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

// conditionLabel summarizes a condition for an edge label. Unlabeled
// success paths stay plain arrows.
func conditionLabel(cond domain.Condition) string {
	switch cond.Type {
	case domain.ConditionBySuccess:
		return ""
	case domain.ConditionByUnhappy:
		return "on failure"
	}

	parts := make([]string, 0, len(cond.Validators))
	for _, v := range cond.Validators {
		parts = append(parts, fmt.Sprintf("%s %s", v.Operator, v.Value))
	}
	if len(parts) == 0 {
		return string(cond.Type)
	}
	return strings.Join(parts, " and ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
