package command

import (
	"strings"
)

// Validate checks a candidate against schema and returns the typed intent.
// Checks run in a fixed order: tag, required presence, empty strings, amount,
// date. It performs no I/O.
func Validate(c Candidate, schema Schema) (Intent, error) {
	spec, ok := schema.Lookup(c.Tag)
	if !ok {
		return nil, &ValidationError{Kind: KindUnknownIntent}
	}

	for _, field := range spec.RequiredFields() {
		if _, present := c.Fields[field]; !present {
			return nil, &ValidationError{Kind: KindMissingField, Field: field}
		}
	}

	values := make(map[string]string, len(spec.Fields))
	for _, f := range spec.Fields {
		raw, present := c.Fields[f.Name]
		if !present {
			continue
		}
		value := strings.TrimSpace(raw)
		if f.Type == TypeString && value == "" {
			return nil, &ValidationError{Kind: KindEmptyField, Field: f.Name}
		}
		values[f.Name] = value
	}

	switch spec.Tag {
	case TagCreateGroup:
		return CreateGroup{Name: values[FieldName]}, nil

	case TagAddExpense:
		cents, err := ParseAmount(values[FieldAmount])
		if err != nil {
			return nil, &ValidationError{Kind: KindInvalidAmount, Field: FieldAmount}
		}
		intent := AddExpense{
			GroupName:   values[FieldGroupName],
			AmountCents: cents,
			Description: values[FieldDescription],
		}
		// An empty optional date counts as unstated.
		if raw := values[FieldDate]; raw != "" {
			date, err := ParseDate(raw)
			if err != nil {
				return nil, &ValidationError{Kind: KindInvalidDate, Field: FieldDate}
			}
			intent.Date = &date
		}
		return intent, nil
	}

	return nil, &ValidationError{Kind: KindUnknownIntent}
}
