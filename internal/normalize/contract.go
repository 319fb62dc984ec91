package normalize

import (
	"fmt"
	"strings"

	"github.com/mmynk/expensecmd/internal/command"
)

// Strategy names accepted by New.
const (
	StrategyGemini  = "gemini"
	StrategyPrompt  = "prompt"
	StrategyPattern = "pattern"
)

// example shows the model one command and the reply expected for it.
type example struct {
	command string
	reply   string
}

var promptExamples = []example{
	{`create a group called Home`, `{"action":"create_group","data":{"name":"Home"}}`},
	{`add expense of rent 50000 to Home group`, `{"action":"add_expense","data":{"group_name":"Home","amount":50000,"description":"rent"}}`},
}

// SystemPrompt describes the JSON reply contract for every intent in schema.
func SystemPrompt(schema command.Schema) string {
	var b strings.Builder
	b.WriteString("You are an assistant for an expense tracking application. ")
	b.WriteString("Parse the user's command and reply with exactly one JSON object and nothing else.\n\n")
	b.WriteString(`The object has the form {"action": "<action>", "data": {...}}.` + "\n\n")
	b.WriteString("Actions:\n")
	for _, intent := range schema.Intents {
		fmt.Fprintf(&b, "- %q: %s\n", intent.Tag, intent.Description)
		for _, f := range intent.Fields {
			req := "optional"
			if f.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    %q (%s, %s): %s\n", f.Name, jsonType(f.Type), req, f.Description)
		}
	}
	b.WriteString("\nNumbers are written without quotes or currency symbols. Omit optional fields that are not stated.\n\nExamples:\n")
	for _, ex := range promptExamples {
		fmt.Fprintf(&b, "Command: %s\nResponse: %s\n", ex.command, ex.reply)
	}
	return b.String()
}

func jsonType(t command.FieldType) string {
	switch t {
	case command.TypeNumber:
		return "number"
	case command.TypeDate:
		return "string, YYYY-MM-DD"
	default:
		return "string"
	}
}
