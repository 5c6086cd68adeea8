package planner

var (
	DefaultRunTimes = []string{"05:00", "16:00"}
	CrossFitSlots   = []string{"18:00-19:00", "19:00-20:00", "20:00-21:00"}
)

const DefaultCompetitionStart = "2025-11-19"

// DefaultAthlete is the profile a new plan starts from.
var DefaultAthlete = Athlete{
	Age:       14,
	Sex:       SexMale,
	HeightCm:  168,
	WeightKg:  56.5,
	Goal:      "lean, high-energy performance",
	Halal:     true,
	Allergies: []string{},
}

// restDayIndexes have no CrossFit session and are planned as light days.
var restDayIndexes = map[int]bool{2: true, 4: true}

// DefaultTrainingWeek builds the standard schedule: two runs daily and an
// evening CrossFit slot except on Tuesday and Thursday of a Sunday-start week.
func DefaultTrainingWeek(start string, allLight bool) ([]TrainingDay, error) {
	dates, err := WeekDates(start)
	if err != nil {
		return nil, err
	}
	week := make([]TrainingDay, len(dates))
	for i, date := range dates {
		cf := []string{CrossFitSlots[0]}
		if restDayIndexes[i] {
			cf = []string{}
		}
		week[i] = TrainingDay{
			Date:     date,
			IsLight:  allLight || restDayIndexes[i],
			RunTimes: append([]string{}, DefaultRunTimes...),
			CFTimes:  cf,
		}
	}
	return week, nil
}
