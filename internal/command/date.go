package command

import (
	"errors"
	"strings"
	"time"

	"github.com/mmynk/expensecmd/internal/models"
)

var errInvalidDate = errors.New("invalid date")

// ParseDate accepts a calendar date as "2006-01-02" or an RFC 3339 timestamp,
// whose date part is kept. The result is midnight UTC of that date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return dateOf(t), nil
	}
	return time.Time{}, errInvalidDate
}

// Today returns the current date in loc (UTC when nil) as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return dateOf(now.In(loc))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
