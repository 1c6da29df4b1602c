package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/acopio/formflow/internal/presentation/tui"
	"github.com/acopio/formflow/internal/runtime"
	"github.com/acopio/formflow/pkg/domain"
)

// RunPreview walks a collection session interactively: it prompts for
// every gather field on the visible path, re-deriving the path after
// each answer so branches open and close as the operator types. When
// pretty is set prompts render through glamour, otherwise plain text.
func RunPreview(ctx context.Context, session *runtime.Session, in io.Reader, out io.Writer, pretty bool) error {
	render := func(s string) (string, error) { return s, nil }
	if pretty {
		render = tui.NewRenderer()
	}

	scanner := bufio.NewScanner(in)
	asked := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next := nextPrompt(session, asked)
		if next == nil {
			break
		}
		name := next.Gather.Name
		asked[name] = true

		prompt := tui.PromptMarkdown(next)
		if txt, err := render(prompt); err == nil {
			fmt.Fprint(out, txt)
		} else {
			fmt.Fprint(out, prompt)
		}
		fmt.Fprintf(out, "%s> ", name)

		if !scanner.Scan() {
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer != "" {
			session.SetValue(ctx, name, answer)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if errs := session.Validate(ctx); len(errs) > 0 {
		fmt.Fprintln(out, "\nValidation problems:")
		for field, msg := range errs {
			fmt.Fprintf(out, "  - %s: %s\n", field, msg)
		}
	} else {
		fmt.Fprintln(out, "\nAll answers valid.")
	}

	fmt.Fprintln(out, "\nVisible path:")
	for _, id := range session.VisibleSet() {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

// nextPrompt returns the first visible gather instruction that has not
// been asked yet. Optional fields are asked once and may stay empty.
func nextPrompt(session *runtime.Session, asked map[string]bool) *domain.Instruction {
	for _, in := range session.VisibleInstructions() {
		if in.Gather == nil || in.Gather.Name == "" {
			continue
		}
		// Calculators fill themselves in from other answers.
		if in.Gather.ValueType == domain.ValueCalculator {
			continue
		}
		if !asked[in.Gather.Name] {
			out := in
			return &out
		}
	}
	return nil
}
