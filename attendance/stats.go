package attendance

import (
	"context"
	"iter"
	"time"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
)

const (
	weekDays  = 7
	monthDays = 30
	// DefaultSummaryDays is the daily summary and insight window.
	DefaultSummaryDays = 14
	// MaxSummaryDays bounds the daily summary window.
	MaxSummaryDays = 90
)

// CheckinSource is the read side of the store used for aggregation.
type CheckinSource interface {
	CountCheckins(ctx context.Context, since time.Time) (int64, error)
	QueryCheckins(ctx context.Context, since time.Time, until *time.Time, ascending bool) iter.Seq2[models.Checkin, error]
}

// Stats is recomputed on every request and never stored.
type Stats struct {
	TotalToday  int64     `json:"totalToday"`
	TotalWeek   int64     `json:"totalWeek"`
	TotalMonth  int64     `json:"totalMonth"`
	PeakHour    string    `json:"peakHour"`
	BusiestDay  string    `json:"busiestDay"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Window summarises a trailing run of calendar days ending today.
type Window struct {
	Total int
	Days  []DailyBucket
	Hours HourHistogram
}

// ActiveDays is the number of days with at least one check-in.
func (w Window) ActiveDays() int {
	n := 0
	for _, d := range w.Days {
		if d.Checkins > 0 {
			n++
		}
	}
	return n
}

// BusiestDate returns the day with the most check-ins; the earliest wins a tie.
func (w Window) BusiestDate() DailyBucket {
	var best DailyBucket
	for _, d := range w.Days {
		if d.Checkins > best.Checkins {
			best = d
		}
	}
	return best
}

// Engine derives display statistics from raw check-ins.
type Engine struct {
	src CheckinSource
	loc *time.Location
	now func() time.Time
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithEngineClock overrides the reference clock.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine bucketing in loc.
func NewEngine(src CheckinSource, loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{src: src, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats computes today/week/month totals, the peak hour of the last 7 days and the
// busiest weekday of the last 30 days.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	now := e.now().In(e.loc)
	todayStart := StartOfDay(now, e.loc)
	weekStart := DaysBack(now, weekDays, e.loc)
	monthStart := DaysBack(now, monthDays, e.loc)

	var st Stats
	var err error
	if st.TotalToday, err = e.src.CountCheckins(ctx, todayStart); err != nil {
		return Stats{}, err
	}
	if st.TotalWeek, err = e.src.CountCheckins(ctx, weekStart); err != nil {
		return Stats{}, err
	}
	if st.TotalMonth, err = e.src.CountCheckins(ctx, monthStart); err != nil {
		return Stats{}, err
	}

	var hours HourHistogram
	var weekdays WeekdayHistogram
	for c, err := range e.src.QueryCheckins(ctx, monthStart, nil, true) {
		if err != nil {
			return Stats{}, err
		}
		weekdays.Add(c.CheckedInAt, e.loc)
		if !c.CheckedInAt.Before(weekStart) {
			hours.Add(c.CheckedInAt, e.loc)
		}
	}

	st.PeakHour = hours.Label()
	st.BusiestDay = weekdays.Label()
	st.LastUpdated = now
	return st, nil
}

// Window aggregates the trailing days calendar days including today.
func (e *Engine) Window(ctx context.Context, days int) (Window, error) {
	if days < 1 || days > MaxSummaryDays {
		return Window{}, domain.NewValidationError("days", "days must be between 1 and 90")
	}
	series := NewDailySeries(e.now(), days, e.loc)

	var w Window
	for c, err := range e.src.QueryCheckins(ctx, series.Start(), nil, true) {
		if err != nil {
			return Window{}, err
		}
		if series.Add(c.CheckedInAt) {
			w.Hours.Add(c.CheckedInAt, e.loc)
			w.Total++
		}
	}
	w.Days = series.Buckets()
	return w, nil
}

// DailySummary returns exactly days zero-filled buckets in ascending date order.
func (e *Engine) DailySummary(ctx context.Context, days int) ([]DailyBucket, error) {
	w, err := e.Window(ctx, days)
	if err != nil {
		return nil, err
	}
	return w.Days, nil
}
