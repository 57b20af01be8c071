package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/gymcheckin/config"
	"github.com/cppla/gymcheckin/controllers"
	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/middleware"
	"github.com/cppla/gymcheckin/utils"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Checkin  *controllers.CheckinController
	Admin    *controllers.AdminController
	Insights *controllers.InsightsController
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, h Controllers) *gin.Engine {
	switch strings.ToLower(cfg.Gin.Mode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	gl, err := utils.NewRollingFileLogger(cfg.Gin.LogPath, cfg.Log)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, true))
	} else {
		utils.Sugar.Warnf("gin access log disabled: %v", err)
		r.Use(utils.RecoveryWithZap(utils.Logger, true))
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.App.AllowedOrigins) == 0 || (len(cfg.App.AllowedOrigins) == 1 && cfg.App.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.App.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/checkin", middleware.RateLimitMiddleware(cfg.App.RateLimitPerMinute), h.Checkin.Submit)
	api.POST("/insights", h.Insights.Generate)
	api.GET("/env-check", h.Insights.EnvCheck)

	admin := api.Group("/admin")
	admin.GET("/stats", h.Admin.GetStats)
	admin.GET("/summary", h.Admin.GetSummary)
	admin.GET("/recent", h.Admin.GetRecent)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, domain.KindNotFound, "api route not found")
	})

	return r
}
