package planner

import "fmt"

// MacroProfile is a fixed daily macro target. Only the two presets exist.
type MacroProfile struct {
	Name     string  `json:"name"`
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

const (
	PresetStandard = "standard"
	PresetLight    = "light"
)

var (
	StandardMacros = MacroProfile{Name: PresetStandard, Kcal: 2400, ProteinG: 110, FatG: 75, CarbsG: 340}
	LightMacros    = MacroProfile{Name: PresetLight, Kcal: 2000, ProteinG: 90, FatG: 60, CarbsG: 260}
)

// MacroPreset resolves a preset by name. An empty name means standard.
func MacroPreset(name string) (MacroProfile, error) {
	switch name {
	case "", PresetStandard:
		return StandardMacros, nil
	case PresetLight:
		return LightMacros, nil
	default:
		return MacroProfile{}, fmt.Errorf("%w: %q", ErrUnknownMacroPreset, name)
	}
}

// mealLibrary and lightDayOverrides are read-only after init. Callers only
// ever see copies from itemsFor.
var mealLibrary = map[MealType][]MealItem{
	MealBreakfast: {
		{Name: "Rolled oats with milk and banana", Grams: 350, Kcal: 520, ProteinG: 20, FatG: 12, CarbsG: 82},
		{Name: "Plain yoghurt with dates and tahini", Grams: 250, Kcal: 320, ProteinG: 16, FatG: 10, CarbsG: 44},
	},
	MealLunch: {
		{Name: "Grilled chicken breast", Grams: 150, Kcal: 210, ProteinG: 40, FatG: 4, CarbsG: 0},
		{Name: "Brown rice", Grams: 200, Kcal: 220, ProteinG: 6, FatG: 2, CarbsG: 46},
		{Name: "Molokhia + whole-wheat pita", Grams: 180, Kcal: 180, ProteinG: 6, FatG: 4, CarbsG: 30},
	},
	MealDinner: {
		{Name: "Baked salmon or sardines", Grams: 140, Kcal: 260, ProteinG: 32, FatG: 14, CarbsG: 0},
		{Name: "Sweet potato mash", Grams: 180, Kcal: 200, ProteinG: 4, FatG: 0, CarbsG: 48},
		{Name: "Tomato-cucumber salad + olive oil", Grams: 150, Kcal: 120, ProteinG: 3, FatG: 7, CarbsG: 10},
	},
	MealSnack: {
		{Name: "Labneh dip + carrots + cucumbers", Grams: 160, Kcal: 210, ProteinG: 12, FatG: 9, CarbsG: 20},
		{Name: "Peanut butter on whole-grain toast", Grams: 70, Kcal: 240, ProteinG: 9, FatG: 11, CarbsG: 27},
	},
	MealPre: {
		{Name: "Banana + honey sandwich", Grams: 150, Kcal: 260, ProteinG: 6, FatG: 5, CarbsG: 50},
		{Name: "Hydration: 300 mL water + pinch salt", Grams: 300, Kcal: 0, ProteinG: 0, FatG: 0, CarbsG: 0},
	},
	MealIntra: {
		{Name: "Electrolyte drink", Grams: 500, Kcal: 80, ProteinG: 0, FatG: 0, CarbsG: 20},
	},
	MealPost: {
		{Name: "Chocolate milk (low-fat)", Grams: 300, Kcal: 220, ProteinG: 12, FatG: 5, CarbsG: 32},
		{Name: "Dates (2) + water", Grams: 120, Kcal: 90, ProteinG: 1, FatG: 0, CarbsG: 24},
	},
}

var lightDayOverrides = map[MealType][]MealItem{
	MealBreakfast: {
		{Name: "Overnight oats with chia and apple", Grams: 300, Kcal: 420, ProteinG: 18, FatG: 10, CarbsG: 60},
	},
	MealLunch: {
		{Name: "Tuna salad with couscous", Grams: 260, Kcal: 360, ProteinG: 30, FatG: 8, CarbsG: 40},
	},
	MealDinner: {
		{Name: "Lentil soup with whole-grain bread", Grams: 320, Kcal: 340, ProteinG: 20, FatG: 6, CarbsG: 46},
	},
	MealSnack: {
		{Name: "Greek yoghurt + seasonal fruit", Grams: 220, Kcal: 180, ProteinG: 15, FatG: 0, CarbsG: 28},
	},
	MealPre: {
		{Name: "Banana + tahini drizzle", Grams: 130, Kcal: 200, ProteinG: 5, FatG: 7, CarbsG: 32},
	},
	MealPost: {
		{Name: "Labneh smoothie with dates", Grams: 260, Kcal: 190, ProteinG: 11, FatG: 4, CarbsG: 26},
	},
}

var hydrationNotes = map[MealType]string{
	MealBreakfast: "350 mL water on waking + with meal",
	MealLunch:     "400 mL water or karkade",
	MealDinner:    "300 mL water or mint tea",
	MealSnack:     "Fruit + 200 mL water",
	MealPre:       "300 mL water with pinch of salt 45 min prior",
	MealIntra:     "Sip 150–250 mL every 15–20 min",
	MealPost:      "400 mL water within 30 min",
}

const (
	notePre   = "30–60 min before training; keep it light and familiar"
	noteIntra = "Sip during sessions >60 min"
	notePost  = "Within 30 min post-workout with 400 mL water"
)

// itemsFor returns a fresh copy of the catalog entry set for a slot, so a
// plan can be edited without touching the catalog or other plans.
func itemsFor(slot MealType, isLight bool) []MealItem {
	items := mealLibrary[slot]
	if isLight {
		if light, ok := lightDayOverrides[slot]; ok {
			items = light
		}
	}
	return append([]MealItem(nil), items...)
}

func noteFor(slot MealType) string {
	switch slot {
	case MealPre:
		return notePre
	case MealIntra:
		return noteIntra
	case MealPost:
		return notePost
	default:
		return hydrationNotes[slot]
	}
}

// LibraryItems returns a copy of the catalogued items for a slot.
func LibraryItems(slot MealType, isLight bool) []MealItem {
	return itemsFor(slot, isLight)
}

// HydrationNote returns the fixed per-slot hydration note.
func HydrationNote(slot MealType) string {
	return hydrationNotes[slot]
}

var snackOptions = []string{
	"Banana with tahini",
	"Dates + almonds",
	"Yoghurt with honey",
	"Labneh with cucumber",
	"Peanut butter sandwich",
	"Chocolate milk",
	"Electrolyte drink",
}

var mainMealNames = []string{"Breakfast", "Lunch", "Dinner"}

// SnackOptions lists quick snack ideas shown next to the plan.
func SnackOptions() []string {
	return append([]string(nil), snackOptions...)
}

func MainMealNames() []string {
	return append([]string(nil), mainMealNames...)
}
