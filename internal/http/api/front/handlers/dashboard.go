package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/waichatt/console/internal/chatwoot"
	"github.com/waichatt/console/internal/config"
	"github.com/waichatt/console/internal/metrics"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// DashboardHandler serves the aggregated usage dashboard.
type DashboardHandler struct {
	db            *gorm.DB      // Database handle for user/client records.
	historicSince time.Time     // Lower bound of the all-time message counters.
	timeout       time.Duration // Per-request bound on provider calls.
}

// NewDashboardHandler constructs a dashboard handler. The historic-since
// date was validated at config load; a parse failure here means the config
// layer was bypassed, and the zero time keeps the handler usable.
func NewDashboardHandler(db *gorm.DB, cfg config.MetricsConfig) *DashboardHandler {
	since, errParse := time.Parse("2006-01-02", cfg.HistoricSince)
	if errParse != nil {
		log.WithError(errParse).Warn("dashboard: invalid historic-since, counting from epoch")
	}
	return &DashboardHandler{db: db, historicSince: since, timeout: cfg.Timeout}
}

// Summary returns the caller's usage metrics. When the messaging provider
// is unreachable the response degrades to zeroed counters with HTTP 200;
// the dashboard renders, it never errors out.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID := c.GetUint64("userID")

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Client").Preload("Client.Plan").
		First(&user, userID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if user.BaseURL == "" || user.AccessToken == "" {
		log.WithField("user_id", user.ID).Warn("dashboard: missing provider credentials")
		c.JSON(http.StatusOK, metrics.Zero())
		return
	}

	reporter := chatwoot.NewWithHTTPClient(user.BaseURL, user.AccessToken, &http.Client{Timeout: h.timeout})
	aggregator := metrics.New(reporter, h.historicSince)

	account := metrics.Account{
		Name:              user.Client.Name,
		PlanID:            user.Client.PlanID,
		MessagesRemaining: user.Client.MessagesRemaining,
		StoredAllowance:   user.Client.Plan.IncludedMessages,
	}

	summary, errCollect := aggregator.Collect(c.Request.Context(), account)
	if errCollect != nil {
		log.WithError(errCollect).WithField("user_id", user.ID).Warn("dashboard: metrics unavailable, serving zeros")
		c.JSON(http.StatusOK, metrics.Zero())
		return
	}
	c.JSON(http.StatusOK, summary)
}
