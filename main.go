package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/attendance"
	"github.com/cppla/gymcheckin/config"
	"github.com/cppla/gymcheckin/controllers"
	"github.com/cppla/gymcheckin/insights"
	"github.com/cppla/gymcheckin/models"
	"github.com/cppla/gymcheckin/routes"
	"github.com/cppla/gymcheckin/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, &models.Member{}, &models.Checkin{})
	if err != nil {
		utils.Sugar.Fatalf("database: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		utils.Sugar.Fatalf("time zone: %v", err)
	}
	store := attendance.NewStore(db)
	if !store.MemberNames() {
		utils.Logger.Warn("members table has no name column; check-ins will be listed without names")
	}

	guardOpts := []attendance.GuardOption{attendance.WithGuardLogger(utils.Logger)}
	if cfg.RedisEnabled() {
		guardOpts = append(guardOpts, attendance.WithClaimStore(utils.GetRedis(cfg.Redis)))
	}
	guard := attendance.NewGuard(store, cfg.CooldownInterval(), guardOpts...)
	checkins := attendance.NewCheckinService(store, guard, time.Now, utils.Logger)
	engine := attendance.NewEngine(store, loc)

	var gen insights.Generator
	if cfg.InsightsConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		bg, err := insights.NewBedrockGenerator(ctx, insights.BedrockSettings{
			Region:      cfg.Insights.AWSRegion,
			ModelID:     cfg.Insights.ModelID,
			MaxTokens:   cfg.Insights.MaxTokens,
			Temperature: cfg.Insights.Temperature,
		})
		cancel()
		if err != nil {
			utils.Logger.Error("bedrock generator unavailable", zap.Error(err))
		} else {
			gen = bg
			if cfg.RedisEnabled() && cfg.Insights.CacheSeconds > 0 {
				cache := utils.NewRedisCache(utils.GetRedis(cfg.Redis), "insights:")
				gen = insights.NewCachingGenerator(bg, cache, time.Duration(cfg.Insights.CacheSeconds)*time.Second)
			}
		}
	} else {
		utils.Logger.Warn("AWS_REGION or BEDROCK_MODEL_ID not set; insights are disabled")
	}
	insightSvc := insights.NewService(engine, gen, cfg.Insights.WindowDays, utils.Logger)

	r := routes.SetupRouter(cfg, routes.Controllers{
		Checkin:  controllers.NewCheckinController(checkins),
		Admin:    controllers.NewAdminController(engine, store, cfg.Checkin.SummaryDays, cfg.Checkin.RecentLimit),
		Insights: controllers.NewInsightsController(insightSvc, cfg.Insights),
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.App.Port)
	if err := utils.GraceServer(":"+cfg.App.Port, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
