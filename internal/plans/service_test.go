package plans

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/fdg312/fuel-planner/internal/storage"
)

type mockPlansRepo struct {
	docs   map[string]storage.PlanDocument
	putErr error
}

func newMockPlansRepo() *mockPlansRepo {
	return &mockPlansRepo{docs: make(map[string]storage.PlanDocument)}
}

func (m *mockPlansRepo) GetPlan(ctx context.Context, ownerUserID string) (storage.PlanDocument, bool, error) {
	doc, ok := m.docs[ownerUserID]
	return doc, ok, nil
}

func (m *mockPlansRepo) PutPlan(ctx context.Context, ownerUserID string, payload []byte) (storage.PlanDocument, error) {
	if m.putErr != nil {
		return storage.PlanDocument{}, m.putErr
	}
	now := time.Date(2025, 11, 16, 8, 0, 0, 0, time.UTC)
	doc, ok := m.docs[ownerUserID]
	if !ok {
		doc = storage.PlanDocument{OwnerUserID: ownerUserID, CreatedAt: now}
	}
	doc.Payload = payload
	doc.UpdatedAt = now
	m.docs[ownerUserID] = doc
	return doc, nil
}

func storageDoc(owner, payload string) storage.PlanDocument {
	return storage.PlanDocument{OwnerUserID: owner, Payload: []byte(payload)}
}

func defaultRequest() GenerateRequest {
	return GenerateRequest{
		Athlete:   planner.DefaultAthlete,
		WeekStart: "2025-11-16",
	}
}

func TestGenerateDefaultWeek(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)

	resp, err := svc.Generate(defaultRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if len(resp.Plan.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(resp.Plan.Days))
	}
	if resp.Plan.Days[0].Date != "2025-11-16" || resp.Plan.Days[6].Date != "2025-11-22" {
		t.Fatalf("dates = %s..%s", resp.Plan.Days[0].Date, resp.Plan.Days[6].Date)
	}
	if resp.Hydration.BaselineMl != (planner.Range{Min: 1978, Max: 2260}) {
		t.Fatalf("baseline = %+v", resp.Hydration.BaselineMl)
	}
	if resp.EnergyKcal != (planner.Range{Min: 2260, Max: 2543}) {
		t.Fatalf("energy = %+v", resp.EnergyKcal)
	}
	if len(resp.Hydration.DailyTargetsMl) != 7 {
		t.Fatalf("daily targets = %d", len(resp.Hydration.DailyTargetsMl))
	}
	if got := resp.Hydration.DailyTargetsMl[0]; got.Sessions != 3 || got.Min != 3478 || got.Max != 3760 {
		t.Fatalf("sunday target = %+v", got)
	}
	if got := resp.Hydration.DailyTargetsMl[2]; got.Sessions != 2 || got.Min != 2978 {
		t.Fatalf("tuesday target = %+v", got)
	}
	if resp.Taper != nil {
		t.Fatalf("taper should be omitted, got %d days", len(resp.Taper))
	}
}

func TestGenerateLightModeAndTaper(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)
	req := defaultRequest()
	req.PlanMode = " LIGHT "
	req.CompetitionStart = "2025-11-19"

	resp, err := svc.Generate(req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	light := planner.LightMacros.Totals()
	for i, day := range resp.Plan.Days {
		if day.Totals != light {
			t.Fatalf("day %d totals = %+v, want %+v", i, day.Totals, light)
		}
	}
	if len(resp.Taper) != 7 || resp.Taper[0].Date != "2025-11-13" {
		t.Fatalf("taper = %+v", resp.Taper)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)

	tests := []struct {
		name   string
		mutate func(r *GenerateRequest)
		want   string
	}{
		{"age", func(r *GenerateRequest) { r.Athlete.Age = 25 }, "athlete.age"},
		{"sex", func(r *GenerateRequest) { r.Athlete.Sex = "other" }, "athlete.sex"},
		{"weight", func(r *GenerateRequest) { r.Athlete.WeightKg = 20 }, "athlete.weight_kg"},
		{"goal", func(r *GenerateRequest) { r.Athlete.Goal = " a " }, "athlete.goal"},
		{"mode", func(r *GenerateRequest) { r.PlanMode = "bulk" }, "plan_mode"},
		{"week start missing", func(r *GenerateRequest) { r.WeekStart = "" }, "week_start is required"},
		{"week start bad", func(r *GenerateRequest) { r.WeekStart = "16/11/2025" }, "week_start"},
		{"short training", func(r *GenerateRequest) {
			r.Training = []planner.TrainingDay{{Date: "2025-11-16"}}
		}, "exactly 7 days"},
		{"competition", func(r *GenerateRequest) { r.CompetitionStart = "soon" }, "competition_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			tt.mutate(&req)
			_, err := svc.Generate(req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), "validation failed: ") {
				t.Fatalf("error %q is not a validation error", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGenerateRejectsBadTrainingTimes(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)
	training, err := planner.DefaultTrainingWeek("2025-11-16", false)
	if err != nil {
		t.Fatalf("DefaultTrainingWeek error: %v", err)
	}
	training[1].CFTimes = []string{"6pm"}

	req := defaultRequest()
	req.Training = training
	if _, err := svc.Generate(req); err == nil || !strings.Contains(err.Error(), "training[1].cf_times") {
		t.Fatalf("expected cf_times error, got %v", err)
	}
}

func TestGenerateNormalizesAllergies(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)
	req := defaultRequest()
	req.Athlete.Allergies = []string{"sesame", " peanuts ", "sesame", ""}

	resp, err := svc.Generate(req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	got := resp.Plan.Athlete.Allergies
	if len(got) != 2 || got[0] != "peanuts" || got[1] != "sesame" {
		t.Fatalf("allergies = %v", got)
	}
}

func TestSaveAndGetPlan(t *testing.T) {
	repo := newMockPlansRepo()
	var buf bytes.Buffer
	svc := NewService(repo, 0, log.New(&buf, "", 0))
	ctx := context.Background()

	if _, found, err := svc.GetPlan(ctx, "u1"); err != nil || found {
		t.Fatalf("GetPlan before save: found=%v err=%v", found, err)
	}

	gen, err := svc.Generate(defaultRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	saved, err := svc.SavePlan(ctx, "u1", gen.Plan)
	if err != nil {
		t.Fatalf("SavePlan error: %v", err)
	}
	if saved.OwnerUserID != "u1" {
		t.Fatalf("owner = %s", saved.OwnerUserID)
	}
	if !strings.Contains(buf.String(), "INFO plans: saved owner=u1") {
		t.Fatalf("log = %q", buf.String())
	}

	got, found, err := svc.GetPlan(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("GetPlan: found=%v err=%v", found, err)
	}
	if got.Plan.Days[3].Totals != gen.Plan.Days[3].Totals {
		t.Fatalf("round-trip totals differ")
	}

	if _, found, _ := svc.GetPlan(ctx, "u2"); found {
		t.Fatal("plan leaked across owners")
	}
}

func TestSavePlanRejectsMisalignedPlan(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)
	gen, err := svc.Generate(defaultRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	plan := gen.Plan
	plan.Days = plan.Days[:6]

	_, err = svc.SavePlan(context.Background(), "u1", plan)
	if err == nil || !strings.HasPrefix(err.Error(), "validation failed: ") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSavePlanStorageError(t *testing.T) {
	repo := newMockPlansRepo()
	repo.putErr = errors.New("db down")
	svc := NewService(repo, 0, nil)
	gen, _ := svc.Generate(defaultRequest())

	_, err := svc.SavePlan(context.Background(), "u1", gen.Plan)
	if err == nil || strings.HasPrefix(err.Error(), "validation failed") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestGetPlanCorruptDocument(t *testing.T) {
	repo := newMockPlansRepo()
	repo.docs["u1"] = storage.PlanDocument{OwnerUserID: "u1", Payload: []byte(`{"days":[]}`)}
	svc := NewService(repo, 0, nil)

	_, _, err := svc.GetPlan(context.Background(), "u1")
	if !errors.Is(err, ErrStoredPlanInvalid) {
		t.Fatalf("expected ErrStoredPlanInvalid, got %v", err)
	}

	repo.docs["u1"] = storage.PlanDocument{OwnerUserID: "u1", Payload: []byte(`not json`)}
	_, _, err = svc.GetPlan(context.Background(), "u1")
	if !errors.Is(err, ErrStoredPlanInvalid) {
		t.Fatalf("expected ErrStoredPlanInvalid for bad json, got %v", err)
	}
}

func TestStoredGrocery(t *testing.T) {
	repo := newMockPlansRepo()
	svc := NewService(repo, 0, nil)
	ctx := context.Background()

	if _, found, err := svc.StoredGrocery(ctx, "u1"); err != nil || found {
		t.Fatalf("StoredGrocery before save: found=%v err=%v", found, err)
	}

	gen, _ := svc.Generate(defaultRequest())
	if _, err := svc.SavePlan(ctx, "u1", gen.Plan); err != nil {
		t.Fatalf("SavePlan error: %v", err)
	}
	resp, found, err := svc.StoredGrocery(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("StoredGrocery: found=%v err=%v", found, err)
	}
	if resp.WeekStart != "2025-11-16" || len(resp.Items) == 0 {
		t.Fatalf("grocery = %+v", resp)
	}
}

func TestHydration(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)

	resp, err := svc.Hydration(nil, 2)
	if err != nil {
		t.Fatalf("Hydration error: %v", err)
	}
	if resp.WeightKg != 56.5 || resp.TargetMl != (planner.Range{Min: 2978, Max: 3260}) {
		t.Fatalf("hydration = %+v", resp)
	}
	if resp.Text != "1978 – 2260 mL baseline + 500 mL per intense session" {
		t.Fatalf("text = %q", resp.Text)
	}

	w := 0.0
	if _, err := svc.Hydration(&w, 0); err == nil {
		t.Fatal("expected error for zero weight")
	}
	if _, err := svc.Hydration(nil, 11); err == nil {
		t.Fatal("expected error for too many sessions")
	}
	for _, w := range []float64{34.9, 100.5, 1e300} {
		if _, err := svc.Hydration(&w, 0); err == nil || !strings.Contains(err.Error(), "weight_kg must be between 35 and 100") {
			t.Fatalf("weight %v: err = %v", w, err)
		}
	}
}

func TestCaffeineGuidance(t *testing.T) {
	tests := []struct {
		age, servings int
		wantMg        int
		wantOK        bool
	}{
		{14, 0, 0, true},
		{14, 1, 80, true},
		{14, 2, 160, false},
		{18, 3, 240, true},
	}
	for _, tt := range tests {
		resp, err := CaffeineGuidance(tt.age, tt.servings)
		if err != nil {
			t.Fatalf("CaffeineGuidance(%d, %d) error: %v", tt.age, tt.servings, err)
		}
		if c := resp.CaffeineCheck; c.CaffeineMg != tt.wantMg || c.WithinLimit != tt.wantOK {
			t.Errorf("CaffeineGuidance(%d, %d) = %+v", tt.age, tt.servings, c)
		}
		if len(resp.MainMeals) != 3 {
			t.Errorf("main meals = %v", resp.MainMeals)
		}
	}

	if _, err := CaffeineGuidance(11, 1); err == nil {
		t.Fatal("expected error for age below range")
	}
}

func TestTaper(t *testing.T) {
	svc := NewService(newMockPlansRepo(), 0, nil)

	resp, err := svc.Taper("2025-11-19")
	if err != nil {
		t.Fatalf("Taper error: %v", err)
	}
	if len(resp.Days) != 7 || resp.Days[6].Date != "2025-11-19" {
		t.Fatalf("taper = %+v", resp.Days)
	}
	if _, err := svc.Taper("2025-13-01"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

func TestMealCatalog(t *testing.T) {
	standard := MealCatalog(false)
	light := MealCatalog(true)

	if len(standard.Slots) != 6 || len(light.Slots) != 6 {
		t.Fatalf("slots = %d/%d", len(standard.Slots), len(light.Slots))
	}
	if standard.Slots[1].Label != "Pre-workout" {
		t.Fatalf("label = %q", standard.Slots[1].Label)
	}
	if standard.Slots[0].Items[0].Name == light.Slots[0].Items[0].Name {
		t.Fatal("light breakfast should differ from standard")
	}

	standard.Slots[0].Items[0].Name = "changed"
	if MealCatalog(false).Slots[0].Items[0].Name == "changed" {
		t.Fatal("catalog mutated through response")
	}
}
