package planner

// Sex of the athlete.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Athlete is the caller-supplied snapshot the week is planned for.
// The engine only reads it.
type Athlete struct {
	Age        int      `json:"age" yaml:"age"`
	Sex        Sex      `json:"sex" yaml:"sex"`
	HeightCm   float64  `json:"height_cm" yaml:"height_cm"`
	WeightKg   float64  `json:"weight_kg" yaml:"weight_kg"`
	Goal       string   `json:"goal" yaml:"goal"`
	Halal      bool     `json:"halal" yaml:"halal"`
	Vegetarian bool     `json:"vegetarian" yaml:"vegetarian"`
	Allergies  []string `json:"allergies" yaml:"allergies"`
}

// TrainingDay is one calendar day of the training schedule.
type TrainingDay struct {
	Date     string   `json:"date" yaml:"date"` // YYYY-MM-DD
	IsLight  bool     `json:"is_light" yaml:"is_light"`
	RunTimes []string `json:"run_times" yaml:"run_times"` // e.g. "05:00"
	CFTimes  []string `json:"cf_times" yaml:"cf_times"`   // e.g. "18:00-19:00"
}

// MealType is a meal occasion (slot).
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealPre       MealType = "pre"
	MealIntra     MealType = "intra"
	MealPost      MealType = "post"
)

// daySlots is the fixed order of meals in every generated day.
// MealIntra is catalogued but not part of the default day.
var daySlots = [...]MealType{MealBreakfast, MealPre, MealLunch, MealSnack, MealDinner, MealPost}

// DaySlots returns the slot order used by BuildDay.
func DaySlots() []MealType {
	out := make([]MealType, len(daySlots))
	copy(out, daySlots[:])
	return out
}

// MealItem is a catalog entry. Items are selected, never built.
type MealItem struct {
	Name     string  `json:"name"`
	Grams    float64 `json:"grams"`
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

type Meal struct {
	Type  MealType   `json:"type"`
	Items []MealItem `json:"items"`
	Notes string     `json:"notes,omitempty"`
}

// Totals is the integer kcal/protein/fat/carbs summary shown for a day.
type Totals struct {
	Kcal int `json:"kcal"`
	P    int `json:"p"`
	F    int `json:"f"`
	C    int `json:"c"`
}

// DayPlan is one day of meals with its hydration and macro targets.
// Totals carries the day's macro target, not the sum of its items; see ItemTotals.
type DayPlan struct {
	Date    string `json:"date"`
	Meals   []Meal `json:"meals"`
	WaterMl int    `json:"water_ml"`
	Totals  Totals `json:"totals"`
}

// ItemTotals sums the catalogued energy and macros of every item in the day.
func (d DayPlan) ItemTotals() Totals {
	var kcal, p, f, c float64
	for _, meal := range d.Meals {
		for _, item := range meal.Items {
			kcal += item.Kcal
			p += item.ProteinG
			f += item.FatG
			c += item.CarbsG
		}
	}
	return Totals{Kcal: roundHalfUp(kcal), P: roundHalfUp(p), F: roundHalfUp(f), C: roundHalfUp(c)}
}

// Plan is the generated week.
type Plan struct {
	WeekStart string        `json:"week_start"`
	Timezone  string        `json:"timezone"`
	Athlete   Athlete       `json:"athlete"`
	Training  []TrainingDay `json:"training"`
	Days      []DayPlan     `json:"days"`
}

// TaperChecklistEntry is one day of the pre-competition checklist.
type TaperChecklistEntry struct {
	Date     string   `json:"date"`
	DayLabel string   `json:"day_label"`
	Guidance []string `json:"guidance"`
}

// GroceryRow is one distinct item across a plan with summed quantities.
type GroceryRow struct {
	Name  string `json:"name"`
	Grams int    `json:"grams"`
	Kcal  int    `json:"kcal"`
}
