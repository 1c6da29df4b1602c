package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow/pkg/domain"
)

const sampleSchema = `
instruction_start: q-crop
module_id: mod-survey
instructions:
  - id: q-crop
    config:
      is_gather: true
      position: {x: 10, y: 20}
    gather:
      name: crop
      value_type: text
    conditions:
      - id: c-next
        type: bySuccess
        next_instruction_id: q-weight
  - id: q-weight
    config:
      is_gather: true
    gather:
      name: weight
      value_type: number
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocumentYAML(t *testing.T) {
	doc, err := LoadDocument(writeTemp(t, "schema.yaml", sampleSchema))
	require.NoError(t, err)

	require.Equal(t, "q-crop", doc.InstructionStart)
	require.Equal(t, "mod-survey", doc.ModuleID)
	require.Len(t, doc.Instructions, 2)
	require.Equal(t, "crop", doc.Instructions[0].Gather.Name)
	require.Equal(t, 10.0, doc.Instructions[0].Config.Position.X)
	require.Equal(t, domain.ConditionBySuccess, doc.Instructions[0].Conditions[0].Type)
	require.NoError(t, doc.Validate())
}

func TestLoadDocumentJSON(t *testing.T) {
	content := `{"instruction_start":"only","instructions":[{"id":"only","config":{"position":{"x":0,"y":0}}}]}`
	doc, err := LoadDocument(writeTemp(t, "schema.json", content))
	require.NoError(t, err)
	require.Equal(t, "only", doc.InstructionStart)
}

func TestLoadDocumentErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDocument(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadDocument(writeTemp(t, "bad.yaml", "instructions: ["))
		require.Error(t, err)
	})
}

func TestSaveDocumentRoundTrip(t *testing.T) {
	doc, err := LoadDocument(writeTemp(t, "schema.yaml", sampleSchema))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, SaveDocument(out, doc))

	again, err := LoadDocument(out)
	require.NoError(t, err)
	require.Equal(t, doc.InstructionStart, again.InstructionStart)
	require.Len(t, again.Instructions, len(doc.Instructions))
}
