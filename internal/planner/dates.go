package planner

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	Timezone   = "Africa/Cairo"
	WeekStart  = "sunday"
	WeekLength = 7
)

// PlanZone is the fixed UTC+2 offset used when a plan needs wall-clock
// times (calendar export). Date arithmetic itself stays in UTC.
var PlanZone = time.FixedZone("EET", 2*60*60)

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// WeekDates returns seven consecutive dates starting at start.
func WeekDates(start string) ([]string, error) {
	t, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	dates := make([]string, WeekLength)
	for i := range dates {
		dates[i] = t.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates, nil
}

// StartOfWeek returns the Sunday on or before date.
func StartOfWeek(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(DateLayout), nil
}
