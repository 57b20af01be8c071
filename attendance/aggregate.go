package attendance

import (
	"fmt"
	"time"
)

// NoData is shown instead of a label when a window has no check-ins.
const NoData = "—"

const dateKeyLayout = "2006-01-02"

// DailyBucket is the number of check-ins on one local calendar day.
type DailyBucket struct {
	Date     string `json:"date"`
	Checkins int    `json:"checkins"`
}

// HourHistogram counts check-ins per local hour of day.
type HourHistogram [24]int

// Add counts t in its hour within loc.
func (h *HourHistogram) Add(t time.Time, loc *time.Location) {
	h[t.In(loc).Hour()]++
}

// Peak returns the hour with the most check-ins. Ties resolve to the lowest hour.
// ok is false when nothing was counted.
func (h *HourHistogram) Peak() (hour int, ok bool) {
	return argmax(h[:])
}

// Label is the 12-hour label of the peak hour, or NoData.
func (h *HourHistogram) Label() string {
	hour, ok := h.Peak()
	if !ok {
		return NoData
	}
	return HourLabel(hour)
}

// WeekdayHistogram counts check-ins per local day of week, Sunday first.
type WeekdayHistogram [7]int

// Add counts t in its weekday within loc.
func (w *WeekdayHistogram) Add(t time.Time, loc *time.Location) {
	w[t.In(loc).Weekday()]++
}

// Peak returns the busiest weekday. Ties resolve to the lowest weekday number.
func (w *WeekdayHistogram) Peak() (time.Weekday, bool) {
	d, ok := argmax(w[:])
	return time.Weekday(d), ok
}

// Label is the English name of the busiest weekday, or NoData.
func (w *WeekdayHistogram) Label() string {
	d, ok := w.Peak()
	if !ok {
		return NoData
	}
	return d.String()
}

func argmax(counts []int) (int, bool) {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best, counts[best] > 0
}

// HourLabel formats a 0-23 hour as "12 AM", "1 PM" and so on.
func HourLabel(hour24 int) string {
	suffix := "AM"
	if hour24 >= 12 {
		suffix = "PM"
	}
	h12 := hour24 % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DaysBack returns local midnight n calendar days before the day containing t.
// Calendar arithmetic keeps the result at midnight across DST changes.
func DaysBack(t time.Time, n int, loc *time.Location) time.Time {
	d := StartOfDay(t, loc)
	return time.Date(d.Year(), d.Month(), d.Day()-n, 0, 0, 0, 0, loc)
}

// DateKey formats t as its local calendar date.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateKeyLayout)
}

// DailySeries is a fixed trailing window of zero-filled day buckets ending on a given day.
type DailySeries struct {
	loc     *time.Location
	buckets []DailyBucket
	index   map[string]int
}

// NewDailySeries builds exactly days buckets in ascending order, the last being now's local day.
func NewDailySeries(now time.Time, days int, loc *time.Location) *DailySeries {
	s := &DailySeries{
		loc:     loc,
		buckets: make([]DailyBucket, 0, days),
		index:   make(map[string]int, days),
	}
	for i := days - 1; i >= 0; i-- {
		key := DateKey(DaysBack(now, i, loc), loc)
		s.index[key] = len(s.buckets)
		s.buckets = append(s.buckets, DailyBucket{Date: key})
	}
	return s
}

// Add counts t in its day and reports whether t fell inside the window.
func (s *DailySeries) Add(t time.Time) bool {
	i, ok := s.index[DateKey(t, s.loc)]
	if ok {
		s.buckets[i].Checkins++
	}
	return ok
}

// Buckets returns a copy of the buckets in ascending date order.
func (s *DailySeries) Buckets() []DailyBucket {
	out := make([]DailyBucket, len(s.buckets))
	copy(out, s.buckets)
	return out
}

// Start is local midnight of the first bucket.
func (s *DailySeries) Start() time.Time {
	first, _ := time.ParseInLocation(dateKeyLayout, s.buckets[0].Date, s.loc)
	return first
}
