package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/storage"
)

var ErrStoredPlanInvalid = errors.New("stored plan document is invalid")

const maxSessionsPerDay = 10

type Logger interface {
	Printf(format string, v ...any)
}

// Service wraps the planner with validation and per-owner persistence.
type Service struct {
	storage         storage.PlansStorage
	defaultWeightKg float64
	logger          Logger
}

func NewService(storage storage.PlansStorage, defaultWeightKg float64, logger Logger) *Service {
	if defaultWeightKg <= 0 {
		defaultWeightKg = planner.DefaultAthlete.WeightKg
	}
	return &Service{storage: storage, defaultWeightKg: defaultWeightKg, logger: logger}
}

// Generate validates the request and builds the week. It does no I/O.
func (s *Service) Generate(req GenerateRequest) (*GenerateResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := planner.MacroPreset(req.PlanMode)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	training := req.Training
	if len(training) == 0 {
		training, err = planner.DefaultTrainingWeek(req.WeekStart, req.PlanMode == PlanModeLight)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	plan, err := planner.BuildWeek(req.Athlete, training, profile)
	if err != nil {
		if isInputError(err) {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		return nil, fmt.Errorf("build week: %w", err)
	}

	hydration, err := hydrationSummary(plan)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	energy, err := planner.EnergyRangeKcal(plan.Athlete.WeightKg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	resp := &GenerateResponse{
		Plan:       plan,
		Hydration:  hydration,
		EnergyKcal: energy,
	}
	if req.CompetitionStart != "" {
		taper, err := planner.BuildTaper(req.CompetitionStart)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		resp.Taper = taper
	}
	return resp, nil
}

func hydrationSummary(plan planner.Plan) (HydrationSummary, error) {
	weight := plan.Athlete.WeightKg
	baseline, err := planner.BaselineMl(weight)
	if err != nil {
		return HydrationSummary{}, err
	}
	text, err := planner.FormatWaterMl(weight)
	if err != nil {
		return HydrationSummary{}, err
	}

	daily := make([]DayFluidRange, 0, len(plan.Training))
	for _, day := range plan.Training {
		target, err := planner.DailyFluidTarget(weight, day)
		if err != nil {
			return HydrationSummary{}, err
		}
		daily = append(daily, DayFluidRange{
			Date:     day.Date,
			Sessions: planner.SessionCount(day),
			Min:      target.Min,
			Max:      target.Max,
		})
	}

	return HydrationSummary{
		BaselineMl:     baseline,
		SessionFluidMl: planner.SessionFluidMl,
		Text:           text,
		DailyTargetsMl: daily,
	}, nil
}

// GetPlan loads and checks the owner's stored plan.
func (s *Service) GetPlan(ctx context.Context, ownerUserID string) (*PlanDocumentDTO, bool, error) {
	doc, found, err := s.storage.GetPlan(ctx, ownerUserID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	var plan planner.Plan
	if err := json.Unmarshal(doc.Payload, &plan); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoredPlanInvalid, err)
	}
	if err := planner.ValidatePlan(plan); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoredPlanInvalid, err)
	}

	return &PlanDocumentDTO{
		OwnerUserID: doc.OwnerUserID,
		Plan:        plan,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, true, nil
}

// LoadPlan returns only the stored plan body.
func (s *Service) LoadPlan(ctx context.Context, ownerUserID string) (planner.Plan, bool, error) {
	doc, found, err := s.GetPlan(ctx, ownerUserID)
	if err != nil || !found {
		return planner.Plan{}, found, err
	}
	return doc.Plan, true, nil
}

// SavePlan replaces the owner's stored plan.
func (s *Service) SavePlan(ctx context.Context, ownerUserID string, plan planner.Plan) (*PlanDocumentDTO, error) {
	if err := planner.ValidatePlan(plan); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := ValidateAthlete(plan.Athlete); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}

	doc, err := s.storage.PutPlan(ctx, ownerUserID, payload)
	if err != nil {
		return nil, err
	}
	logf(s.logger, "INFO plans: saved owner=%s week=%s bytes=%d", ownerUserID, plan.Days[0].Date, len(payload))

	return &PlanDocumentDTO{
		OwnerUserID: doc.OwnerUserID,
		Plan:        plan,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// StoredGrocery aggregates the owner's stored plan.
func (s *Service) StoredGrocery(ctx context.Context, ownerUserID string) (*GroceryResponse, bool, error) {
	doc, found, err := s.GetPlan(ctx, ownerUserID)
	if err != nil || !found {
		return nil, found, err
	}
	return Grocery(doc.Plan), true, nil
}

// Grocery aggregates any plan.
func Grocery(plan planner.Plan) *GroceryResponse {
	resp := &GroceryResponse{Items: planner.Aggregate(plan)}
	if len(plan.Days) > 0 {
		resp.WeekStart = plan.Days[0].Date
	}
	return resp
}

func (s *Service) Taper(competitionStart string) (*TaperResponse, error) {
	days, err := planner.BuildTaper(competitionStart)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &TaperResponse{CompetitionStart: competitionStart, Days: days}, nil
}

// Hydration returns the fluid target for a day with the given number of
// sessions. A nil weight uses the configured default.
func (s *Service) Hydration(weightKg *float64, sessions int) (*HydrationResponse, error) {
	w := s.defaultWeightKg
	if weightKg != nil {
		w = *weightKg
		if !(w >= MinWeightKg && w <= MaxWeightKg) {
			return nil, fmt.Errorf("validation failed: weight_kg must be between %d and %d", MinWeightKg, MaxWeightKg)
		}
	}
	if sessions < 0 || sessions > maxSessionsPerDay {
		return nil, fmt.Errorf("validation failed: sessions must be between 0 and %d", maxSessionsPerDay)
	}

	baseline, err := planner.BaselineMl(w)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	text, err := planner.FormatWaterMl(w)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	extra := sessions * planner.SessionFluidMl

	return &HydrationResponse{
		WeightKg:       w,
		Sessions:       sessions,
		BaselineMl:     baseline,
		TargetMl:       planner.Range{Min: baseline.Min + extra, Max: baseline.Max + extra},
		SessionFluidMl: planner.SessionFluidMl,
		Text:           text,
	}, nil
}

func MacroPresets() *MacroPresetsResponse {
	return &MacroPresetsResponse{Presets: []planner.MacroProfile{planner.StandardMacros, planner.LightMacros}}
}

func Guidance() *GuidanceResponse {
	return &GuidanceResponse{
		MainMeals:    planner.MainMealNames(),
		SnackOptions: planner.SnackOptions(),
		Caffeine:     planner.Caffeine,
	}
}

// CaffeineGuidance is Guidance plus a check of a daily energy-drink intake.
func CaffeineGuidance(age, servings int) (*GuidanceResponse, error) {
	if age < MinAge || age > MaxAge {
		return nil, fmt.Errorf("validation failed: age must be between %d and %d", MinAge, MaxAge)
	}
	if servings < 0 {
		return nil, fmt.Errorf("validation failed: servings must not be negative")
	}
	mg, ok := planner.CaffeineAllowance(age, servings)
	resp := Guidance()
	resp.CaffeineCheck = &CaffeineCheck{Age: age, Servings: servings, CaffeineMg: mg, WithinLimit: ok}
	return resp, nil
}

// MealCatalog lists the day's slots with the items a standard or light day uses.
func MealCatalog(light bool) *MealCatalogResponse {
	slots := planner.DaySlots()
	resp := &MealCatalogResponse{Light: light, Slots: make([]MealSlotEntry, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, MealSlotEntry{
			Type:          slot,
			Label:         planner.SlotLabel(slot),
			HydrationNote: planner.HydrationNote(slot),
			Items:         planner.LibraryItems(slot, light),
		})
	}
	return resp
}

func isInputError(err error) bool {
	return errors.Is(err, planner.ErrInvalidDate) ||
		errors.Is(err, planner.ErrInvalidScheduleLength) ||
		errors.Is(err, planner.ErrInvalidWeight)
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
