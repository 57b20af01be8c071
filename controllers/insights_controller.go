package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gymcheckin/config"
	"github.com/cppla/gymcheckin/insights"
	"github.com/cppla/gymcheckin/utils"
)

// InsightGenerator produces the dashboard's generated summary.
type InsightGenerator interface {
	Generate(ctx context.Context) (insights.Result, error)
}

// InsightsController serves generated insights and the settings probe.
type InsightsController struct {
	svc      InsightGenerator
	settings config.InsightsSection
}

// NewInsightsController creates a new controller instance.
func NewInsightsController(svc InsightGenerator, settings config.InsightsSection) *InsightsController {
	return &InsightsController{svc: svc, settings: settings}
}

// Generate handles POST /api/insights.
func (i *InsightsController) Generate(ctx *gin.Context) {
	res, err := i.svc.Generate(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err, "Failed to load attendance data.")
		return
	}
	utils.Success(ctx, gin.H{"insights": res.Insights, "bullets": res.Bullets})
}

// EnvCheck handles GET /api/env-check. It never reveals credentials.
func (i *InsightsController) EnvCheck(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"hasRegion":  i.settings.AWSRegion != "",
		"hasModelId": i.settings.ModelID != "",
		"region":     i.settings.AWSRegion,
		"modelId":    i.settings.ModelID,
	})
}
