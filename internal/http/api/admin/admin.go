package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/config"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/http/api/admin/handlers"
	"github.com/waichatt/console/internal/models"
	"github.com/waichatt/console/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the admin surface: every route is gated on
// the admin role by the session guard before any handler runs.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, fx *exchange.Client) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	authed := r.Group("/v0/admin")
	authed.Use(AuthMiddleware(db, jwtCfg, models.RoleAdmin))

	clientHandler := handlers.NewClientHandler(db)
	authed.POST("/clients", clientHandler.Create)
	authed.GET("/clients", clientHandler.List)
	authed.GET("/clients/:id", clientHandler.Get)
	authed.PUT("/clients/:id", clientHandler.Update)
	authed.DELETE("/clients/:id", clientHandler.Delete)

	userHandler := handlers.NewUserHandler(db)
	authed.POST("/users", userHandler.Create)
	authed.GET("/users", userHandler.List)
	authed.GET("/users/:id", userHandler.Get)
	authed.PUT("/users/:id", userHandler.Update)
	authed.DELETE("/users/:id", userHandler.Delete)

	planHandler := handlers.NewPlanHandler(db)
	authed.GET("/plans", planHandler.List)
	authed.GET("/plans/:id", planHandler.Get)

	paymentHandler := handlers.NewPaymentHandler(db)
	authed.POST("/payments", paymentHandler.Create)
	authed.GET("/payments", paymentHandler.List)
	authed.GET("/payments/:id", paymentHandler.Get)
	authed.PUT("/payments/:id", paymentHandler.Update)
	authed.DELETE("/payments/:id", paymentHandler.Delete)

	serviceHandler := handlers.NewServiceHandler(db)
	authed.POST("/services", serviceHandler.Create)
	authed.GET("/services", serviceHandler.List)
	authed.PUT("/services/:id", serviceHandler.Update)
	authed.DELETE("/services/:id", serviceHandler.Delete)

	expenseHandler := handlers.NewExpenseHandler(db, fx)
	authed.POST("/expenses", expenseHandler.Create)
	authed.GET("/expenses", expenseHandler.List)
	authed.PUT("/expenses/:id", expenseHandler.Update)
	authed.DELETE("/expenses/:id", expenseHandler.Delete)

	financeHandler := handlers.NewFinanceHandler(db, fx)
	authed.GET("/balance", financeHandler.Balance)
	authed.GET("/finances", financeHandler.Overview)

	blogHandler := handlers.NewBlogHandler(db)
	authed.POST("/blogs", blogHandler.Create)
	authed.GET("/blogs", blogHandler.List)
	authed.GET("/blogs/:id", blogHandler.Get)
	authed.PUT("/blogs/:id", blogHandler.Update)
	authed.DELETE("/blogs/:id", blogHandler.Delete)
	authed.GET("/blogs/:id/recommendable", blogHandler.Recommendable)
}

// AuthMiddleware is the session/role guard. It resolves the caller's
// identity from the bearer token and compares the claimed role against the
// required level before touching the data store; an insufficient role is
// rejected with no database work and no side effects. Only after the role
// check passes is the user row confirmed to still exist.
func AuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errParse := security.ParseSessionToken(jwtCfg.Secret, token)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Role gate first: claims carry the normalized role, so an
		// under-privileged caller is turned away before any query runs.
		if required == models.RoleAdmin && !claims.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("clientID", user.ClientID)
		c.Set("role", models.NormalizeRole(string(user.Role)))
		c.Next()
	}
}
