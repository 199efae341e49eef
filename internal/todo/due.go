package todo

import (
	"fmt"
	"strings"
	"time"
)

const (
	DueLayout  = "2006-01-02 15:04"
	dateLayout = "2006-01-02"
)

// ParseDue reads "YYYY-MM-DD HH:MM" or a bare date in loc. A bare date means
// the end of that day. Empty input yields a nil due date.
func ParseDue(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DueLayout, v, loc); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: due date %q, want YYYY-MM-DD [HH:MM]", ErrValidation, v)
	}
	t = EndOfDay(t, loc)
	return &t, nil
}

func FormatDue(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DueLayout)
}

// EndOfDay is 23:59 on t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, mo, d := t.In(loc).Date()
	return time.Date(y, mo, d, 23, 59, 0, 0, loc)
}
