package plans

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/fuel-planner/internal/planner"
)

const (
	PlanModeStandard = "standard"
	PlanModeLight    = "light"
)

// Athlete ranges accepted by GenerateRequest.Validate.
const (
	MinAge      = 12
	MaxAge      = 18
	MinHeightCm = 140
	MaxHeightCm = 210
	MinWeightKg = 35
	MaxWeightKg = 100
	MinGoalLen  = 3
)

var (
	runTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	cfTimePattern  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)
)

// GenerateRequest asks for a week plan. Training may be omitted, in which
// case the default schedule starting at WeekStart is used.
type GenerateRequest struct {
	Athlete          planner.Athlete       `json:"athlete" yaml:"athlete"`
	WeekStart        string                `json:"week_start,omitempty" yaml:"week_start"`
	Training         []planner.TrainingDay `json:"training,omitempty" yaml:"training"`
	PlanMode         string                `json:"plan_mode,omitempty" yaml:"plan_mode"`
	CompetitionStart string                `json:"competition_start,omitempty" yaml:"competition_start"`
}

// Normalize trims free text and sorts allergies into a de-duplicated set.
func (r *GenerateRequest) Normalize() {
	r.Athlete.Goal = strings.TrimSpace(r.Athlete.Goal)
	r.Athlete.Sex = planner.Sex(strings.ToLower(strings.TrimSpace(string(r.Athlete.Sex))))
	r.WeekStart = strings.TrimSpace(r.WeekStart)
	r.PlanMode = strings.ToLower(strings.TrimSpace(r.PlanMode))
	r.CompetitionStart = strings.TrimSpace(r.CompetitionStart)

	seen := make(map[string]bool, len(r.Athlete.Allergies))
	allergies := make([]string, 0, len(r.Athlete.Allergies))
	for _, a := range r.Athlete.Allergies {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		allergies = append(allergies, a)
	}
	sort.Strings(allergies)
	r.Athlete.Allergies = allergies
}

func (r GenerateRequest) Validate() error {
	if err := ValidateAthlete(r.Athlete); err != nil {
		return err
	}

	switch r.PlanMode {
	case "", PlanModeStandard, PlanModeLight:
	default:
		return fmt.Errorf("plan_mode must be %q or %q", PlanModeStandard, PlanModeLight)
	}

	if len(r.Training) == 0 {
		if r.WeekStart == "" {
			return errors.New("week_start is required when training is omitted")
		}
		if _, err := planner.ParseDate(r.WeekStart); err != nil {
			return fmt.Errorf("week_start: %w", err)
		}
	} else {
		if err := validateTraining(r.Training); err != nil {
			return err
		}
		if r.WeekStart != "" && r.WeekStart != r.Training[0].Date {
			return fmt.Errorf("week_start %s does not match first training date %s", r.WeekStart, r.Training[0].Date)
		}
	}

	if r.CompetitionStart != "" {
		if _, err := planner.ParseDate(r.CompetitionStart); err != nil {
			return fmt.Errorf("competition_start: %w", err)
		}
	}
	return nil
}

// ValidateAthlete checks the athlete snapshot against the accepted ranges.
func ValidateAthlete(a planner.Athlete) error {
	if a.Age < MinAge || a.Age > MaxAge {
		return fmt.Errorf("athlete.age must be between %d and %d", MinAge, MaxAge)
	}
	if a.Sex != planner.SexMale && a.Sex != planner.SexFemale {
		return errors.New("athlete.sex must be male or female")
	}
	if a.HeightCm < MinHeightCm || a.HeightCm > MaxHeightCm {
		return fmt.Errorf("athlete.height_cm must be between %d and %d", MinHeightCm, MaxHeightCm)
	}
	if a.WeightKg < MinWeightKg || a.WeightKg > MaxWeightKg {
		return fmt.Errorf("athlete.weight_kg must be between %d and %d", MinWeightKg, MaxWeightKg)
	}
	if len([]rune(strings.TrimSpace(a.Goal))) < MinGoalLen {
		return fmt.Errorf("athlete.goal must be at least %d characters", MinGoalLen)
	}
	return nil
}

func validateTraining(training []planner.TrainingDay) error {
	if len(training) != planner.WeekLength {
		return fmt.Errorf("training: %w (got %d)", planner.ErrInvalidScheduleLength, len(training))
	}
	for i, day := range training {
		if _, err := planner.ParseDate(day.Date); err != nil {
			return fmt.Errorf("training[%d].date: %w", i, err)
		}
		for _, t := range day.RunTimes {
			if !runTimePattern.MatchString(t) {
				return fmt.Errorf("training[%d].run_times: %q is not HH:MM", i, t)
			}
		}
		for _, t := range day.CFTimes {
			if !cfTimePattern.MatchString(t) {
				return fmt.Errorf("training[%d].cf_times: %q is not HH:MM-HH:MM", i, t)
			}
		}
	}
	return nil
}

// HydrationSummary is the fluid guidance attached to a generated plan.
type HydrationSummary struct {
	BaselineMl     planner.Range   `json:"baseline_ml"`
	SessionFluidMl int             `json:"session_fluid_ml"`
	Text           string          `json:"text"`
	DailyTargetsMl []DayFluidRange `json:"daily_targets_ml"`
}

type DayFluidRange struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

type GenerateResponse struct {
	Plan       planner.Plan                  `json:"plan"`
	Hydration  HydrationSummary              `json:"hydration"`
	EnergyKcal planner.Range                 `json:"energy_kcal"`
	Taper      []planner.TaperChecklistEntry `json:"taper,omitempty"`
}

// PlanDocumentDTO is the stored plan returned by GET/PUT /v1/plan.
type PlanDocumentDTO struct {
	OwnerUserID string       `json:"owner_user_id"`
	Plan        planner.Plan `json:"plan"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type SavePlanRequest struct {
	Plan planner.Plan `json:"plan"`
}

type GroceryResponse struct {
	WeekStart string               `json:"week_start,omitempty"`
	Items     []planner.GroceryRow `json:"items"`
}

type TaperResponse struct {
	CompetitionStart string                        `json:"competition_start"`
	Days             []planner.TaperChecklistEntry `json:"days"`
}

type HydrationResponse struct {
	WeightKg       float64       `json:"weight_kg"`
	Sessions       int           `json:"sessions"`
	BaselineMl     planner.Range `json:"baseline_ml"`
	TargetMl       planner.Range `json:"target_ml"`
	SessionFluidMl int           `json:"session_fluid_ml"`
	Text           string        `json:"text"`
}

type MacroPresetsResponse struct {
	Presets []planner.MacroProfile `json:"presets"`
}

type GuidanceResponse struct {
	MainMeals     []string                 `json:"main_meals"`
	SnackOptions  []string                 `json:"snack_options"`
	Caffeine      planner.CaffeineGuidance `json:"caffeine"`
	CaffeineCheck *CaffeineCheck           `json:"caffeine_check,omitempty"`
}

// CaffeineCheck is the result of GET /v1/catalog/guidance?age=&servings=.
type CaffeineCheck struct {
	Age         int  `json:"age"`
	Servings    int  `json:"servings"`
	CaffeineMg  int  `json:"caffeine_mg"`
	WithinLimit bool `json:"within_limit"`
}

type MealCatalogResponse struct {
	Light bool            `json:"light"`
	Slots []MealSlotEntry `json:"slots"`
}

type MealSlotEntry struct {
	Type          planner.MealType   `json:"type"`
	Label         string             `json:"label"`
	HydrationNote string             `json:"hydration_note"`
	Items         []planner.MealItem `json:"items"`
}
