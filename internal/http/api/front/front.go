package front

import (
	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/config"
	"github.com/waichatt/console/internal/http/api/admin"
	"github.com/waichatt/console/internal/http/api/front/handlers"
	"github.com/waichatt/console/internal/models"
	"github.com/waichatt/console/internal/ratelimit"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the client-facing surface: login plus the
// authenticated dashboard and payment history endpoints.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, metricsCfg config.MetricsConfig, limiter *ratelimit.Manager) {
	if r == nil || db == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(db, jwtCfg, limiter)
	r.POST("/v0/login", authHandler.Login)

	authed := r.Group("/v0")
	authed.Use(admin.AuthMiddleware(db, jwtCfg, models.RoleUser))

	dashboardHandler := handlers.NewDashboardHandler(db, metricsCfg)
	authed.GET("/dashboard", dashboardHandler.Summary)

	paymentHandler := handlers.NewPaymentHistoryHandler(db)
	authed.GET("/payments", paymentHandler.List)
}
