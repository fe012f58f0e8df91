package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/attendease/attendease-api/internal/handler"
	"github.com/attendease/attendease-api/internal/middleware"
	"github.com/attendease/attendease-api/internal/models"
	"github.com/attendease/attendease-api/internal/service"
	"github.com/attendease/attendease-api/pkg/config"
	"github.com/attendease/attendease-api/pkg/logger"
	corsmiddleware "github.com/attendease/attendease-api/pkg/middleware/cors"
	reqidmiddleware "github.com/attendease/attendease-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Class      *handler.ClassHandler
	Student    *handler.StudentHandler
	Attendance *handler.AttendanceHandler
	Record     *handler.RecordHandler
	Dashboard  *handler.DashboardHandler
	Metrics    *handler.MetricsHandler
}

// Readiness reports whether backing stores are reachable.
type Readiness func() error

// New assembles the gin engine with middleware and all routes mounted under
// the configured API prefix.
func New(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metricsSvc *service.MetricsService, h Handlers, ready Readiness) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if ready != nil {
			if err := ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/classes", h.Class.List)
		protected.POST("/classes", h.Class.Create)
		protected.GET("/classes/:id", h.Class.Get)
		protected.PUT("/classes/:id", h.Class.Update)
		protected.DELETE("/classes/:id", h.Class.Delete)

		protected.GET("/classes/:id/students", h.Student.List)
		protected.POST("/classes/:id/students", h.Student.Add)
		protected.DELETE("/students/:id", h.Student.Remove)

		protected.GET("/classes/:id/attendance", h.Attendance.View)
		protected.PUT("/classes/:id/attendance", h.Attendance.SetStatus)

		protected.GET("/records", h.Record.List)
		protected.GET("/records/export", h.Record.Export)

		protected.GET("/dashboard/classes", h.Dashboard.ClassCards)
	}

	return r
}
