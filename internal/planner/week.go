package planner

import "fmt"

// BuildWeek produces one DayPlan per training day. Light days always use
// LightMacros; other days use profile.
func BuildWeek(athlete Athlete, training []TrainingDay, profile MacroProfile) (Plan, error) {
	if len(training) != WeekLength {
		return Plan{}, fmt.Errorf("%w: got %d", ErrInvalidScheduleLength, len(training))
	}
	if err := validateWeight(athlete.WeightKg); err != nil {
		return Plan{}, err
	}

	days := make([]DayPlan, 0, len(training))
	for i, td := range training {
		dayProfile := profile
		if td.IsLight {
			dayProfile = LightMacros
		}
		day, err := BuildDay(td.Date, dayProfile, td.IsLight, athlete.WeightKg)
		if err != nil {
			return Plan{}, fmt.Errorf("training day %d: %w", i, err)
		}
		days = append(days, day)
	}

	return Plan{
		WeekStart: WeekStart,
		Timezone:  Timezone,
		Athlete:   cloneAthlete(athlete),
		Training:  cloneTraining(training),
		Days:      days,
	}, nil
}

// ValidatePlan checks the structural invariants of a plan that came from
// outside the engine, such as a stored document.
func ValidatePlan(plan Plan) error {
	if len(plan.Training) != WeekLength {
		return fmt.Errorf("%w: training has %d days", ErrInvalidScheduleLength, len(plan.Training))
	}
	if len(plan.Days) != WeekLength {
		return fmt.Errorf("%w: plan has %d days", ErrInvalidScheduleLength, len(plan.Days))
	}
	for i := range plan.Days {
		if _, err := ParseDate(plan.Days[i].Date); err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
		if plan.Days[i].Date != plan.Training[i].Date {
			return fmt.Errorf("%w: day %d is %s, training is %s", ErrPlanMisaligned, i, plan.Days[i].Date, plan.Training[i].Date)
		}
	}
	return nil
}

func cloneAthlete(a Athlete) Athlete {
	if a.Allergies != nil {
		a.Allergies = append([]string{}, a.Allergies...)
	}
	return a
}

func cloneTraining(training []TrainingDay) []TrainingDay {
	out := make([]TrainingDay, len(training))
	for i, td := range training {
		out[i] = td
		if td.RunTimes != nil {
			out[i].RunTimes = append([]string{}, td.RunTimes...)
		}
		if td.CFTimes != nil {
			out[i].CFTimes = append([]string{}, td.CFTimes...)
		}
	}
	return out
}
