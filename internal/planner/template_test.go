package planner

import (
	"errors"
	"testing"
)

func TestDefaultTrainingWeek(t *testing.T) {
	week, err := DefaultTrainingWeek("2025-11-16", false)
	if err != nil {
		t.Fatalf("DefaultTrainingWeek error: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("len = %d", len(week))
	}
	if week[0].Date != "2025-11-16" || week[6].Date != "2025-11-22" {
		t.Fatalf("dates = %s..%s", week[0].Date, week[6].Date)
	}
	for i, day := range week {
		rest := i == 2 || i == 4
		if day.IsLight != rest {
			t.Errorf("day %d is_light = %v", i, day.IsLight)
		}
		if rest && len(day.CFTimes) != 0 {
			t.Errorf("day %d cf_times = %v", i, day.CFTimes)
		}
		if !rest && (len(day.CFTimes) != 1 || day.CFTimes[0] != "18:00-19:00") {
			t.Errorf("day %d cf_times = %v", i, day.CFTimes)
		}
		if len(day.RunTimes) != 2 {
			t.Errorf("day %d run_times = %v", i, day.RunTimes)
		}
	}

	all, err := DefaultTrainingWeek("2025-11-16", true)
	if err != nil {
		t.Fatalf("DefaultTrainingWeek error: %v", err)
	}
	for i, day := range all {
		if !day.IsLight {
			t.Errorf("all-light day %d is not light", i)
		}
	}
}

func TestWeekDatesCrossMonthAndYear(t *testing.T) {
	dates, err := WeekDates("2025-12-28")
	if err != nil {
		t.Fatalf("WeekDates error: %v", err)
	}
	want := []string{"2025-12-28", "2025-12-29", "2025-12-30", "2025-12-31", "2026-01-01", "2026-01-02", "2026-01-03"}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	cases := map[string]string{
		"2025-11-16": "2025-11-16", // Sunday
		"2025-11-19": "2025-11-16",
		"2025-11-22": "2025-11-16",
		"2026-03-01": "2026-03-01",
	}
	for in, want := range cases {
		got, err := StartOfWeek(in)
		if err != nil {
			t.Fatalf("StartOfWeek(%s) error: %v", in, err)
		}
		if got != want {
			t.Errorf("StartOfWeek(%s) = %s, want %s", in, got, want)
		}
	}
	if _, err := StartOfWeek("16/11/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad date err = %v", err)
	}
}
