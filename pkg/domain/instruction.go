package domain

// Value type constants for gather fields.
const (
	// ValueText is a free-form text answer.
	ValueText = "text"
	// ValueNumber is a numeric answer.
	ValueNumber = "number"
	// ValueBoolean is a yes/no answer.
	ValueBoolean = "boolean"
	// ValueMedia is an uploaded photo/audio/document reference.
	ValueMedia = "media"
	// ValueEntity is a reference to a registered entity (producer, plot,
	// warehouse...), resolved through an external lookup.
	ValueEntity = "entity"
	// ValueOptions is a selection from a fixed option list.
	ValueOptions = "options"
	// ValueCalculator is a derived value computed from other fields.
	ValueCalculator = "calculator"
)

// Position is an authored x/y coordinate on the editor canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Config holds the authoring metadata of an instruction: which question
// tool it is bound to, where it sits on the canvas, and its role flags.
type Config struct {
	Tool     string   `json:"tool,omitempty" yaml:"tool,omitempty"`
	Position Position `json:"position" yaml:"position"`

	// IsGather marks instructions that capture data (own a gather field).
	IsGather bool `json:"is_gather,omitempty" yaml:"is_gather,omitempty"`

	// IsChannel marks instructions that invoke an external channel/action
	// instead of asking the user a question.
	IsChannel bool `json:"is_channel,omitempty" yaml:"is_channel,omitempty"`
}

// Option is one selectable entry of an options or entity gather field.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// GatherField is the single data-capturing field an instruction may own.
type GatherField struct {
	Name      string `json:"name" yaml:"name"`
	ValueType string `json:"value_type" yaml:"value_type"`

	// Unique requires an existence check against the backend on submit.
	Unique bool `json:"unique,omitempty" yaml:"unique,omitempty"`
	// Optional fields may be submitted empty.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	// Representative marks the field whose value represents the whole
	// record in listings and entity lookups.
	Representative bool `json:"representative,omitempty" yaml:"representative,omitempty"`

	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	// Order is a visual ordering hint among fields of the same page.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`

	// EntityType identifies the entity collection to query when
	// ValueType == ValueEntity.
	EntityType string `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`

	// FilterExpression restricts entity lookups. It may contain
	// {{otherField}} placeholders resolved against captured values.
	FilterExpression string `json:"filter_expression,omitempty" yaml:"filter_expression,omitempty"`

	// Expression is the arithmetic template of a calculator field,
	// e.g. "{{net_weight}} * {{price_per_kg}}".
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Variable is a named output an instruction contributes to the flow-wide
// variable namespace (e.g. values returned by an external channel).
type Variable struct {
	Name      string `json:"name" yaml:"name"`
	ValueType string `json:"value_type" yaml:"value_type"`
}

// Instruction is a node in the flow graph: one question or action, its
// configuration fields, and its outgoing condition edges.
type Instruction struct {
	ID     string `json:"id" yaml:"id"`
	Config Config `json:"config" yaml:"config"`

	Gather *GatherField `json:"gather,omitempty" yaml:"gather,omitempty"`

	// Inputs and AdvancedInputs are the question's own settings (label,
	// placeholder, validation rules...), authored as a nested tree and
	// flattened by the metadata compiler.
	Inputs         []SchemaInput `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	AdvancedInputs []SchemaInput `json:"advanced_inputs,omitempty" yaml:"advanced_inputs,omitempty"`

	Variables []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`

	// Conditions are the ordered outgoing edges of this node.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// SuccessCondition returns the instruction's bySuccess condition, or nil.
func (in *Instruction) SuccessCondition() *Condition {
	for i := range in.Conditions {
		if in.Conditions[i].Type == ConditionBySuccess {
			return &in.Conditions[i]
		}
	}
	return nil
}

// GatherName returns the gather field name, or "" for non-gather nodes.
func (in *Instruction) GatherName() string {
	if in.Gather == nil {
		return ""
	}
	return in.Gather.Name
}
