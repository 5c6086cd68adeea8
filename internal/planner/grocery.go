package planner

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Aggregate sums grams and kcal per distinct item name across every meal in
// the plan. Names match exactly; rows are ordered by English collation.
func Aggregate(plan Plan) []GroceryRow {
	type sums struct{ grams, kcal float64 }
	byName := make(map[string]*sums)
	for _, day := range plan.Days {
		for _, meal := range day.Meals {
			for _, item := range meal.Items {
				s, ok := byName[item.Name]
				if !ok {
					s = &sums{}
					byName[item.Name] = s
				}
				s.grams += item.Grams
				s.kcal += item.Kcal
			}
		}
	}

	rows := make([]GroceryRow, 0, len(byName))
	for name, s := range byName {
		rows = append(rows, GroceryRow{
			Name:  name,
			Grams: roundHalfUp(s.grams),
			Kcal:  roundHalfUp(s.kcal),
		})
	}

	// Collators keep scratch buffers and are not safe to share.
	col := collate.New(language.English)
	sort.Slice(rows, func(i, j int) bool {
		if c := col.CompareString(rows[i].Name, rows[j].Name); c != 0 {
			return c < 0
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
