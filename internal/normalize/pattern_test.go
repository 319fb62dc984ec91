package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/expensecmd/internal/command"
)

func TestPattern_Normalize(t *testing.T) {
	tests := []struct {
		text   string
		tag    string
		fields map[string]string
	}{
		{
			text:   "create a group called Home",
			tag:    command.TagCreateGroup,
			fields: map[string]string{"name": "Home"},
		},
		{
			text:   "Create Group named 'Summer Trip'",
			tag:    command.TagCreateGroup,
			fields: map[string]string{"name": "Summer Trip"},
		},
		{
			text:   "please create group Office",
			tag:    command.TagCreateGroup,
			fields: map[string]string{"name": "Office"},
		},
		{
			text:   "add expense of rent 50000 to Home group",
			tag:    command.TagAddExpense,
			fields: map[string]string{"description": "rent", "amount": "50000", "group_name": "Home"},
		},
		{
			text:   "add expense of groceries of 42.50 to Home",
			tag:    command.TagAddExpense,
			fields: map[string]string{"description": "groceries", "amount": "42.50", "group_name": "Home"},
		},
		{
			text:   "ADD EXPENSE OF train ticket 19,90 to Travel group on 2024-03-01",
			tag:    command.TagAddExpense,
			fields: map[string]string{"description": "train ticket", "amount": "19,90", "group_name": "Travel", "date": "2024-03-01"},
		},
	}

	p := NewPattern()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, err := p.Normalize(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, c.Tag)
			assert.Equal(t, tt.fields, c.Fields)
		})
	}
}

func TestPattern_NoMatch(t *testing.T) {
	p := NewPattern()
	for _, text := range []string{"asdkjasd", "create group", "add expense of rent to Home", ""} {
		t.Run(text, func(t *testing.T) {
			_, err := p.Normalize(context.Background(), text)
			assert.Equal(t, command.KindNoMatch, command.KindOf(err))
		})
	}
}
