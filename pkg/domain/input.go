package domain

// Schema input kinds. A schema input is one configuration field of a
// question: primitive, a nested dict of further inputs, or an options
// field with explicit selection-cardinality rules.
const (
	InputText    = "text"
	InputNumber  = "number"
	InputBoolean = "boolean"
	InputMedia   = "media"
	InputDict    = "dict"
	InputOptions = "options"
)

// Selection-cardinality rules for options-typed inputs.
const (
	// SelectSingle allows exactly one selected option.
	SelectSingle = "single"
	// SelectMultiple allows any number of selected options; the compiled
	// value starts as an empty array.
	SelectMultiple = "multiple"

	// DataSimple persists the raw selected value.
	DataSimple = "simple"
	// DataAll persists the full option records of the selected ids.
	DataAll = "all"
)

// SchemaInput is a configuration field of an instruction. Dict inputs nest
// child inputs recursively; the metadata compiler flattens the tree into
// the persisted payload.
type SchemaInput struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Value is the authored value. For dict inputs it is ignored; for
	// increasing inputs it holds a list of sub-field rows.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Inputs are the children of a dict-typed input.
	Inputs []SchemaInput `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Increasing marks list-valued inputs whose array rows are flattened
	// to their .value sub-fields at compile time.
	Increasing bool `json:"increasing,omitempty" yaml:"increasing,omitempty"`

	// Select and Data apply to options-typed inputs only.
	Select string `json:"select,omitempty" yaml:"select,omitempty"`
	Data   string `json:"data,omitempty" yaml:"data,omitempty"`

	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
}
