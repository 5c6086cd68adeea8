package planner

import (
	"fmt"
	"math"
)

const (
	MlPerKgMin     = 35
	MlPerKgMax     = 40
	SessionFluidMl = 500

	// MaxWeightKg bounds every per-kg computation; past it the products
	// stop meaning anything and eventually overflow int.
	MaxWeightKg = 1000
)

// Range is an inclusive min/max pair in whole units.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// BaselineMl returns the daily fluid baseline for a body weight,
// 35 and 40 mL per kg rounded half-up.
func BaselineMl(weightKg float64) (Range, error) {
	if err := validateWeight(weightKg); err != nil {
		return Range{}, err
	}
	return Range{
		Min: roundHalfUp(weightKg * MlPerKgMin),
		Max: roundHalfUp(weightKg * MlPerKgMax),
	}, nil
}

// SessionCount is the number of intense sessions scheduled on a day.
func SessionCount(day TrainingDay) int {
	return len(day.RunTimes) + len(day.CFTimes)
}

// DailyFluidTarget adds SessionFluidMl per session to the baseline.
func DailyFluidTarget(weightKg float64, day TrainingDay) (Range, error) {
	base, err := BaselineMl(weightKg)
	if err != nil {
		return Range{}, err
	}
	extra := SessionFluidMl * SessionCount(day)
	return Range{Min: base.Min + extra, Max: base.Max + extra}, nil
}

// FormatWaterMl renders the baseline as shown on the plan header.
func FormatWaterMl(weightKg float64) (string, error) {
	base, err := BaselineMl(weightKg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d – %d mL baseline + %d mL per intense session", base.Min, base.Max, SessionFluidMl), nil
}

func validateWeight(weightKg float64) error {
	if math.IsNaN(weightKg) || weightKg <= 0 || weightKg > MaxWeightKg {
		return fmt.Errorf("%w: got %v", ErrInvalidWeight, weightKg)
	}
	return nil
}

// roundHalfUp rounds to the nearest integer with .5 going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
