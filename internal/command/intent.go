package command

import "time"

// Intent is a validated, fully-typed command. It is one of CreateGroup or AddExpense.
type Intent interface {
	Tag() string
}

// CreateGroup asks for a group to exist.
type CreateGroup struct {
	Name string
}

func (CreateGroup) Tag() string { return TagCreateGroup }

// AddExpense logs an expense against a group, creating the group on first use.
type AddExpense struct {
	GroupName   string
	AmountCents int64
	Description string
	// Date is nil when the command did not state one.
	Date *time.Time
}

func (AddExpense) Tag() string { return TagAddExpense }

// Candidate is the strategy-agnostic output of a Normalizer: an intent tag and
// its raw string fields, not yet validated.
type Candidate struct {
	Tag    string
	Fields map[string]string
}
