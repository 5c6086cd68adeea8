package planner

// BuildDay assembles the six meals of a day from the catalog. Items are
// taken as catalogued and never scaled to the macro profile.
func BuildDay(date string, profile MacroProfile, isLight bool, weightKg float64) (DayPlan, error) {
	if _, err := ParseDate(date); err != nil {
		return DayPlan{}, err
	}
	water, err := BaselineMl(weightKg)
	if err != nil {
		return DayPlan{}, err
	}

	meals := make([]Meal, 0, len(daySlots))
	for _, slot := range daySlots {
		meals = append(meals, Meal{
			Type:  slot,
			Items: itemsFor(slot, isLight),
			Notes: noteFor(slot),
		})
	}

	return DayPlan{
		Date:    date,
		Meals:   meals,
		WaterMl: water.Max,
		Totals:  profile.Totals(),
	}, nil
}

// Totals rounds the profile to whole units.
func (p MacroProfile) Totals() Totals {
	return Totals{
		Kcal: roundHalfUp(p.Kcal),
		P:    roundHalfUp(p.ProteinG),
		F:    roundHalfUp(p.FatG),
		C:    roundHalfUp(p.CarbsG),
	}
}
