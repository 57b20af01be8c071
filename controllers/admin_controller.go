package controllers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gymcheckin/attendance"
	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
	"github.com/cppla/gymcheckin/utils"
)

// MaxRecentLimit caps the recent check-ins page size.
const MaxRecentLimit = 200

// StatsProvider computes dashboard aggregates.
type StatsProvider interface {
	Stats(ctx context.Context) (attendance.Stats, error)
	DailySummary(ctx context.Context, days int) ([]attendance.DailyBucket, error)
}

// RecentLister lists the newest check-ins.
type RecentLister interface {
	RecentCheckins(ctx context.Context, limit int) ([]models.RecentCheckin, error)
}

// AdminController serves the read-only dashboard endpoints.
type AdminController struct {
	stats       StatsProvider
	recent      RecentLister
	summaryDays int
	recentLimit int
}

// NewAdminController creates a new controller instance with default window and page sizes.
func NewAdminController(stats StatsProvider, recent RecentLister, summaryDays, recentLimit int) *AdminController {
	if summaryDays <= 0 {
		summaryDays = attendance.DefaultSummaryDays
	}
	if recentLimit <= 0 {
		recentLimit = 30
	}
	return &AdminController{stats: stats, recent: recent, summaryDays: summaryDays, recentLimit: recentLimit}
}

// GetStats handles GET /api/admin/stats.
func (a *AdminController) GetStats(ctx *gin.Context) {
	st, err := a.stats.Stats(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err, "Failed to load stats.")
		return
	}
	utils.Success(ctx, gin.H{
		"totalToday":  st.TotalToday,
		"totalWeek":   st.TotalWeek,
		"totalMonth":  st.TotalMonth,
		"peakHour":    st.PeakHour,
		"busiestDay":  st.BusiestDay,
		"lastUpdated": st.LastUpdated,
	})
}

// GetSummary handles GET /api/admin/summary?days=N.
func (a *AdminController) GetSummary(ctx *gin.Context) {
	days, err := intQuery(ctx, "days", a.summaryDays, 1, attendance.MaxSummaryDays)
	if err != nil {
		writeError(ctx, err, "")
		return
	}
	data, err := a.stats.DailySummary(ctx.Request.Context(), days)
	if err != nil {
		writeError(ctx, err, "Failed to load summary data.")
		return
	}
	utils.Success(ctx, gin.H{"data": data})
}

// GetRecent handles GET /api/admin/recent?limit=N.
func (a *AdminController) GetRecent(ctx *gin.Context) {
	limit, err := intQuery(ctx, "limit", a.recentLimit, 1, MaxRecentLimit)
	if err != nil {
		writeError(ctx, err, "")
		return
	}
	rows, err := a.recent.RecentCheckins(ctx.Request.Context(), limit)
	if err != nil {
		writeError(ctx, err, "Failed to load recent check-ins.")
		return
	}
	utils.Success(ctx, gin.H{"data": rows})
}

func intQuery(ctx *gin.Context, key string, def, lo, hi int) (int, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, domain.NewValidationError(key, key+" must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi)+".")
	}
	return v, nil
}
