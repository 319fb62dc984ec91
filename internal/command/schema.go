package command

// Intent tags recognized by the pipeline.
const (
	TagCreateGroup = "create_group"
	TagAddExpense  = "add_expense"

	// TagUnknown stands in for a normalized tag outside the schema.
	TagUnknown = "unknown"
)

// Field names used in candidates and in the generation contract.
const (
	FieldName        = "name"
	FieldGroupName   = "group_name"
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldDate        = "date"

	fieldCommand = "command"
)

// FieldType is the wire type of a schema field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
)

// FieldSpec describes one parameter of an intent.
type FieldSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
	Description string    `json:"description" yaml:"description"`
}

// IntentSpec describes one recognized intent.
type IntentSpec struct {
	Tag         string      `json:"tag" yaml:"tag"`
	Description string      `json:"description" yaml:"description"`
	Fields      []FieldSpec `json:"fields" yaml:"fields"`
}

// RequiredFields returns the names of the required fields in declaration order.
func (s IntentSpec) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Schema is the closed set of intents the pipeline understands.
type Schema struct {
	Intents []IntentSpec `json:"intents" yaml:"intents"`
}

// Lookup returns the spec for tag.
func (s Schema) Lookup(tag string) (IntentSpec, bool) {
	for _, spec := range s.Intents {
		if spec.Tag == tag {
			return spec, true
		}
	}
	return IntentSpec{}, false
}

// Tags returns every intent tag in declaration order.
func (s Schema) Tags() []string {
	tags := make([]string, len(s.Intents))
	for i, spec := range s.Intents {
		tags[i] = spec.Tag
	}
	return tags
}

// Describe returns the intent schema. Every generation contract and the
// validator's required-field checks are derived from it.
func Describe() Schema {
	return Schema{Intents: []IntentSpec{
		{
			Tag:         TagCreateGroup,
			Description: "Creates an expense group with the given name.",
			Fields: []FieldSpec{
				{Name: FieldName, Type: TypeString, Required: true, Description: "Name of the group"},
			},
		},
		{
			Tag:         TagAddExpense,
			Description: "Adds an expense to a group, creating the group if it does not exist.",
			Fields: []FieldSpec{
				{Name: FieldGroupName, Type: TypeString, Required: true, Description: "Name of the group the expense belongs to"},
				{Name: FieldAmount, Type: TypeNumber, Required: true, Description: "Positive amount, numbers only, no currency symbols"},
				{Name: FieldDescription, Type: TypeString, Required: true, Description: "What the money was spent on"},
				{Name: FieldDate, Type: TypeDate, Required: false, Description: "Calendar date in YYYY-MM-DD format; omit if not stated"},
			},
		},
	}}
}
