package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	valid := []struct {
		in   string
		want int64
	}{
		{"50000", 5000000},
		{"42.5", 4250},
		{"42,50", 4250},
		{" 7 ", 700},
		{".5", 50},
		{"5.", 500},
		{"0.01", 1},
		{"1.005", 101},
		{"1.004", 100},
		{"1,234.50", 123450},
		{"1.234,50", 123450},
		{"1,234,567", 123456700},
		{"50,000", 5000000},
		{"1,500", 150000},
		{"999,999", 99999900},
		{"19,90", 1990},
		{"0,500", 50},
		{"1,5", 150},
		{"1.500", 150},
		{"92233720368547758", 9223372036854775800},
	}
	for _, tt := range valid {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []string{
		"", "   ", "0", "0.00", "0.004", "-5", "+5", "abc", "5 euros", "$5",
		"1e3", "NaN", "Inf", "1.2.3", "12,34,5", "1234,567,890", "1.2,3.4", "92233720368547759",
	}
	for _, in := range invalid {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50000", FormatAmount(5000000))
	assert.Equal(t, "42.50", FormatAmount(4250))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "1.10", FormatAmount(110))
}
