package insights

import (
	"fmt"

	"github.com/cppla/gymcheckin/attendance"
)

// NoDataMessage is returned instead of calling the model when the window has no check-ins.
const NoDataMessage = "No recent check-in data found yet. Once members start checking in, I’ll generate trend insights here."

// InsightInput is the aggregate the prompt is built from.
type InsightInput struct {
	WindowDays        int
	Total             int
	ActiveDays        int
	PeakHour          string
	BusiestDate       string
	BusiestDateCounts int
}

// AveragePerActiveDay divides by at least one day.
func (in InsightInput) AveragePerActiveDay() float64 {
	return float64(in.Total) / float64(max(1, in.ActiveDays))
}

// Empty reports whether there is nothing to summarise.
func (in InsightInput) Empty() bool { return in.Total == 0 }

// InputFromWindow flattens an aggregation window.
func InputFromWindow(w attendance.Window) InsightInput {
	busiest := w.BusiestDate()
	return InsightInput{
		WindowDays:        len(w.Days),
		Total:             w.Total,
		ActiveDays:        w.ActiveDays(),
		PeakHour:          w.Hours.Label(),
		BusiestDate:       busiest.Date,
		BusiestDateCounts: busiest.Checkins,
	}
}

const promptTemplate = `You are an analytics engine for a gym attendance dashboard. Given ONLY the data below, produce exactly 5 bullet points, no more, no less.

Data (last %d days):
- Total check-ins: %d
- Days with data: %d
- Average check-ins per active day: %.1f
- Peak hour: %s
- Busiest date: %s (%d check-ins)

Rules:
1. Output exactly 5 lines, each starting with "- ".
2. Bullets 1-4 are insights. Bullet 5 is a data limitation.
3. Each bullet is one concise sentence.
4. Use a professional, neutral analytics tone.
5. Do NOT include any headings, labels, or section titles.
6. Do NOT restate the instructions or the data summary.
7. Do NOT use markdown formatting other than "- " bullets.
8. Do NOT speculate beyond the data provided.
9. Do NOT use phrases like "based on the provided summary" or "according to the data".
10. Output nothing before or after the 5 bullets.`

// BuildPrompt renders the instruction text. The output is a pure function of in.
func BuildPrompt(in InsightInput) string {
	days := in.WindowDays
	if days <= 0 {
		days = attendance.DefaultSummaryDays
	}
	return fmt.Sprintf(promptTemplate,
		days,
		in.Total,
		in.ActiveDays,
		in.AveragePerActiveDay(),
		in.PeakHour,
		in.BusiestDate,
		in.BusiestDateCounts,
	)
}
