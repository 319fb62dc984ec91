package normalize

import (
	"context"
	"regexp"
	"strings"

	"github.com/mmynk/expensecmd/internal/command"
)

// rule maps the capture groups of one expression to candidate fields.
// Empty captures are left out of the candidate.
type rule struct {
	tag    string
	re     *regexp.Regexp
	fields []string
}

const (
	groupTail = `\s+to\s+(.+?)(?:\s+group)?(?:\s+on\s+(\d{4}-\d{2}-\d{2}))?\s*$`
	amount    = `([\d.,]+)`
)

var defaultRules = []rule{
	{
		tag:    command.TagCreateGroup,
		re:     regexp.MustCompile(`(?i)\bcreate\s+(?:a\s+)?(?:new\s+)?group\s+(?:called\s+|named\s+)?(.+?)\s*$`),
		fields: []string{command.FieldName},
	},
	{
		tag:    command.TagAddExpense,
		re:     regexp.MustCompile(`(?i)\badd\s+(?:an\s+)?expense\s+of\s+(.+?)\s+of\s+` + amount + groupTail),
		fields: []string{command.FieldDescription, command.FieldAmount, command.FieldGroupName, command.FieldDate},
	},
	{
		tag:    command.TagAddExpense,
		re:     regexp.MustCompile(`(?i)\badd\s+(?:an\s+)?expense\s+of\s+(.+?)\s+` + amount + groupTail),
		fields: []string{command.FieldDescription, command.FieldAmount, command.FieldGroupName, command.FieldDate},
	},
}

// Pattern recognizes a fixed set of phrasings without any network call.
type Pattern struct {
	rules []rule
}

var _ command.Normalizer = (*Pattern)(nil)

// NewPattern returns a Pattern normalizer with the built-in rules.
func NewPattern() *Pattern {
	return &Pattern{rules: defaultRules}
}

func (p *Pattern) Name() string { return StrategyPattern }

// Normalize applies the rules in order and returns the first match.
func (p *Pattern) Normalize(_ context.Context, text string) (command.Candidate, error) {
	for _, r := range p.rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fields := make(map[string]string, len(r.fields))
		for i, name := range r.fields {
			value := strings.Trim(strings.TrimSpace(m[i+1]), `"'`)
			if value != "" {
				fields[name] = value
			}
		}
		return command.Candidate{Tag: r.tag, Fields: fields}, nil
	}
	return command.Candidate{}, command.NoMatch()
}
