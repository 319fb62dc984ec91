package command

import (
	"errors"
	"strconv"
	"strings"
)

var errInvalidAmount = errors.New("invalid amount")

// maxUnits keeps units*100 inside int64.
const maxUnits = (1<<63 - 1) / 100

// ParseAmount parses a positive decimal amount into integer cents.
//
// Either '.' or ',' may be the decimal separator. When both appear, the last
// one is the decimal separator and the other is thousands grouping
// ("1,234.50", "1.234,50"). A separator repeated more than once is grouping,
// and so is a lone comma followed by exactly three digits ("50,000").
// The third fractional digit rounds half-up; further digits are ignored.
// Signs, exponents, zero and values that overflow are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidAmount
	}

	intPart, fracPart, err := splitAmount(s)
	if err != nil {
		return 0, err
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, errInvalidAmount
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > maxUnits {
		return 0, errInvalidAmount
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		frac += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++
	}

	cents := units*100 + frac
	if cents <= 0 {
		return 0, errInvalidAmount
	}
	return cents, nil
}

// splitAmount separates the integer and fractional digits of s, removing any
// thousands grouping.
func splitAmount(s string) (string, string, error) {
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')

	var decimal, grouping byte
	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			decimal, grouping = '.', ','
		} else {
			decimal, grouping = ',', '.'
		}
	case dot >= 0:
		decimal = '.'
	case comma >= 0:
		decimal = ','
	default:
		return s, "", nil
	}

	if grouping == 0 && (strings.Count(s, string(decimal)) > 1 || thousandsComma(s, decimal)) {
		grouping, decimal = decimal, 0
	}

	intPart, fracPart := s, ""
	if decimal != 0 {
		i := strings.LastIndexByte(s, decimal)
		intPart, fracPart = s[:i], s[i+1:]
		if strings.IndexByte(intPart, decimal) >= 0 {
			return "", "", errInvalidAmount
		}
	}
	if grouping != 0 {
		grouped, err := ungroup(intPart, grouping)
		if err != nil {
			return "", "", err
		}
		intPart = grouped
	}
	return intPart, fracPart, nil
}

// thousandsComma reports whether a lone comma in s groups thousands, as in
// "50,000" or "1,500": one to three leading digits (not starting with 0)
// followed by exactly three.
func thousandsComma(s string, sep byte) bool {
	if sep != ',' {
		return false
	}
	intPart, fracPart, _ := strings.Cut(s, ",")
	return len(fracPart) == 3 && len(intPart) >= 1 && len(intPart) <= 3 && intPart[0] != '0'
}

// ungroup removes thousands separators, requiring three-digit groups after
// the first.
func ungroup(s string, sep byte) (string, error) {
	groups := strings.Split(s, string(sep))
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", errInvalidAmount
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", errInvalidAmount
		}
	}
	return strings.Join(groups, ""), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatAmount renders cents as a decimal string, dropping a zero fraction:
// 5000000 -> "50000", 4250 -> "42.50".
func FormatAmount(cents int64) string {
	units, frac := cents/100, cents%100
	if frac == 0 {
		return strconv.FormatInt(units, 10)
	}
	if frac < 10 {
		return strconv.FormatInt(units, 10) + ".0" + strconv.FormatInt(frac, 10)
	}
	return strconv.FormatInt(units, 10) + "." + strconv.FormatInt(frac, 10)
}
