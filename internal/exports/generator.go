package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/fdg312/fuel-planner/internal/planner"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfTitle     = "ELFIT Rookie Fuel Planner"
	productID    = "-//fdg312//fuel-planner//EN"
	eventMinutes = 30
)

// Render produces the file body for format.
func Render(format string, plan planner.Plan, taper []planner.TaperChecklistEntry, stamp time.Time) ([]byte, error) {
	switch format {
	case FormatPDF:
		return RenderPDF(plan, taper)
	case FormatCSV:
		return RenderCSV(plan)
	case FormatGroceryCSV:
		return RenderGroceryCSV(plan)
	case FormatICS:
		return RenderICS(plan, stamp)
	default:
		return nil, ErrInvalidFormat
	}
}

func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatCSV, FormatGroceryCSV:
		return "text/csv"
	case FormatICS:
		return "text/calendar"
	default:
		return "application/octet-stream"
	}
}

func FileExtension(format string) string {
	switch format {
	case FormatGroceryCSV:
		return "csv"
	default:
		return format
	}
}

// Filename is the attachment name offered on download.
func Filename(format, weekStart string) string {
	prefix := "fuel-plan"
	if format == FormatGroceryCSV {
		prefix = "grocery-list"
	}
	if weekStart == "" {
		return prefix + "." + FileExtension(format)
	}
	return fmt.Sprintf("%s-%s.%s", prefix, weekStart, FileExtension(format))
}

// RenderPDF lays out the week with core fonts only; text goes through the
// cp1252 translator so bullets and dashes survive.
func RenderPDF(plan planner.Plan, taper []planner.TaperChecklistEntry) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, pdfTitle)
	pdf.Ln(12)

	a := plan.Athlete
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Athlete: %d y • %s • %s kg", a.Age, a.Sex, formatNumber(a.WeightKg))))
	pdf.Ln(7)
	if water, err := planner.FormatWaterMl(a.WeightKg); err == nil {
		pdf.Cell(0, 7, tr("Hydration: "+water))
		pdf.Ln(7)
	}
	if len(plan.Days) > 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Week of %s (%s)", plan.Days[0].Date, plan.Timezone))
		pdf.Ln(10)
	}

	for _, day := range plan.Days {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, dayHeading(day.Date))
		pdf.Ln(7)

		for _, meal := range day.Meals {
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetX(15)
			pdf.MultiCell(0, 5.5, tr(fmt.Sprintf("%s: %s", planner.SlotCode(meal.Type), itemNames(meal.Items))), "", "L", false)
			if meal.Notes != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetX(20)
				pdf.MultiCell(0, 4.5, tr("Notes: "+meal.Notes), "", "L", false)
			}
		}

		t := day.Totals
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetX(15)
		pdf.Cell(0, 6, tr(fmt.Sprintf("Totals: %d kcal • P %d g • F %d g • C %d g", t.Kcal, t.P, t.F, t.C)))
		pdf.Ln(6)
		// Targets and catalogued items differ; show both.
		sum := day.ItemTotals()
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(15)
		pdf.Cell(0, 5, tr(fmt.Sprintf("Items: %d kcal • P %d g • F %d g • C %d g", sum.Kcal, sum.P, sum.F, sum.C)))
		pdf.Ln(9)
	}

	if len(taper) > 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, "Taper checklist")
		pdf.Ln(10)
		for _, entry := range taper {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 6, fmt.Sprintf("%s (%s)", entry.Date, entry.DayLabel))
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			for _, tip := range entry.Guidance {
				pdf.SetX(15)
				pdf.MultiCell(0, 5, tr("• "+tip), "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

var planCSVHeader = []string{"date", "meal", "items", "kcal", "protein", "fat", "carbs"}

// RenderCSV writes one row per day and meal with item-level sums.
func RenderCSV(plan planner.Plan) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(planCSVHeader); err != nil {
		return nil, err
	}

	for _, day := range plan.Days {
		for _, meal := range day.Meals {
			var kcal, protein, fat, carbs float64
			items := make([]string, 0, len(meal.Items))
			for _, item := range meal.Items {
				items = append(items, fmt.Sprintf("%s (%sg)", item.Name, formatNumber(item.Grams)))
				kcal += item.Kcal
				protein += item.ProteinG
				fat += item.FatG
				carbs += item.CarbsG
			}
			row := []string{
				day.Date,
				string(meal.Type),
				strings.Join(items, " | "),
				formatNumber(kcal),
				formatNumber(protein),
				formatNumber(fat),
				formatNumber(carbs),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var groceryCSVHeader = []string{"name", "grams", "kcal"}

// RenderGroceryCSV writes the aggregated shopping list.
func RenderGroceryCSV(plan planner.Plan) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(groceryCSVHeader); err != nil {
		return nil, err
	}
	for _, row := range planner.Aggregate(plan) {
		if err := w.Write([]string{row.Name, strconv.Itoa(row.Grams), strconv.Itoa(row.Kcal)}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fueling slots that become calendar reminders, with their local start time.
var eventTimes = map[planner.MealType][2]int{
	planner.MealPre:   {15, 30},
	planner.MealIntra: {12, 0},
	planner.MealPost:  {20, 30},
	planner.MealSnack: {12, 0},
}

// RenderICS emits a 30 minute event per pre, intra, post and snack meal.
// Event ids are derived from date and slot so re-exports update in place.
func RenderICS(plan planner.Plan, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRTimezone(plan.Timezone)

	for _, day := range plan.Days {
		date, err := planner.ParseDate(day.Date)
		if err != nil {
			return nil, err
		}
		for _, meal := range day.Meals {
			hm, ok := eventTimes[meal.Type]
			if !ok {
				continue
			}
			start := time.Date(date.Year(), date.Month(), date.Day(), hm[0], hm[1], 0, 0, planner.PlanZone)

			event := cal.AddEvent(fmt.Sprintf("%s-%s@fuel-planner", day.Date, meal.Type))
			event.SetDtStampTime(stamp)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(eventMinutes * time.Minute))
			event.SetSummary(planner.SlotCode(meal.Type) + " nutrition")
			event.SetDescription(itemNames(meal.Items))
		}
	}

	return []byte(cal.Serialize()), nil
}

func itemNames(items []planner.MealItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, ", ")
}

func dayHeading(date string) string {
	t, err := planner.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", t.Weekday(), date)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
