package planner

import "fmt"

const TaperDays = 7

var taperBaseTips = []string{
	"Prioritize complex carbs (rice, pasta, sweet potato) at each meal",
	"Include 500-750 mL electrolyte drink daily",
	"Salt food lightly to boost sodium stores",
}

const (
	taperLowFibreTip      = "Shift to lower fiber options in the evening"
	taperPackSnacksTip    = "Pack competition snacks: dates, banana, yoghurt smoothie"
	taperBreakfastTip     = "Breakfast 3 h pre-event: oats + yoghurt + banana"
	taperBetweenEventsTip = "Between events: chocolate milk, electrolyte sips, rice cakes + honey"
)

// BuildTaper returns the seven days ending on competitionStart, oldest first.
func BuildTaper(competitionStart string) ([]TaperChecklistEntry, error) {
	entries := make([]TaperChecklistEntry, 0, TaperDays)
	for i := 0; i < TaperDays; i++ {
		offset := TaperDays - 1 - i
		label := "Competition day"
		if offset > 0 {
			label = fmt.Sprintf("-%d days", offset)
		}

		guidance := append([]string{}, taperBaseTips...)
		if i >= 4 {
			guidance = append(guidance, taperLowFibreTip)
		}
		if i >= 5 {
			guidance = append(guidance, taperPackSnacksTip)
		}
		if i == TaperDays-1 {
			guidance = append(guidance, taperBreakfastTip, taperBetweenEventsTip)
		}

		date, err := AddDays(competitionStart, -offset)
		if err != nil {
			return nil, err
		}
		entries = append(entries, TaperChecklistEntry{
			Date:     date,
			DayLabel: label,
			Guidance: guidance,
		})
	}
	return entries, nil
}
