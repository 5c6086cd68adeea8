package planner

import (
	"strings"
	"unicode"
)

const (
	EnergyKcalPerKgMin = 40
	EnergyKcalPerKgMax = 45
)

// EnergyRangeKcal is the 40–45 kcal/kg daily energy guide.
func EnergyRangeKcal(weightKg float64) (Range, error) {
	if err := validateWeight(weightKg); err != nil {
		return Range{}, err
	}
	return Range{
		Min: roundHalfUp(weightKg * EnergyKcalPerKgMin),
		Max: roundHalfUp(weightKg * EnergyKcalPerKgMax),
	}, nil
}

// CaffeineGuidance holds the caffeine limits shown to under-18 athletes.
type CaffeineGuidance struct {
	MaxMgUnder18       int `json:"max_mg_under_18"`
	BedtimeBufferHours int `json:"bedtime_buffer_hours"`
	EnergyDrinkMg      int `json:"energy_drink_mg"` // per 250 mL can
	EnergyDrinkSugarG  int `json:"energy_drink_sugar_g"`
}

var Caffeine = CaffeineGuidance{
	MaxMgUnder18:       100,
	BedtimeBufferHours: 6,
	EnergyDrinkMg:      80,
	EnergyDrinkSugarG:  27,
}

// CaffeineAllowance reports the caffeine from servings energy drinks and
// whether it stays under the daily limit for an athlete of the given age.
// Adults have no limit here.
func CaffeineAllowance(age, servings int) (mg int, ok bool) {
	if servings < 0 {
		servings = 0
	}
	mg = servings * Caffeine.EnergyDrinkMg
	if age >= 18 {
		return mg, true
	}
	return mg, mg < Caffeine.MaxMgUnder18
}

var slotLabels = map[MealType]string{
	MealPre:   "Pre-workout",
	MealIntra: "Intra-session",
	MealPost:  "Post-workout",
}

// SlotLabel is the human-readable name of a meal slot.
func SlotLabel(slot MealType) string {
	if label, ok := slotLabels[slot]; ok {
		return label
	}
	s := string(slot)
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SlotCode is the upper-case slot tag used in exports, e.g. "PRE".
func SlotCode(slot MealType) string {
	return strings.ToUpper(string(slot))
}
