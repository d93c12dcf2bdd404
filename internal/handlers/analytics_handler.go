package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/services"
)

type AnalyticsHandler struct {
	analyticsSvc *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// summary binds the ledger filter and returns the cached aggregate, writing the error
// response itself when it fails
func (h *AnalyticsHandler) summary(c *gin.Context) (*models.AnalyticsSummary, bool) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	summary, err := h.analyticsSvc.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return summary, true
}

// @Summary Analytics Summary
// @Description Totals, daily series, anomalies and insights in one call
// @Tags Analytics
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "income or expense"
// @Param category query string false "Category"
// @Success 200 {object} models.AnalyticsSummary
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	if s, ok := h.summary(c); ok {
		c.JSON(http.StatusOK, s)
	}
}

// @Summary Analytics Totals
// @Tags Analytics
// @Produce json
// @Success 200 {object} models.Totals
// @Router /analytics/totals [get]
func (h *AnalyticsHandler) Totals(c *gin.Context) {
	if s, ok := h.summary(c); ok {
		c.JSON(http.StatusOK, s.Totals)
	}
}

// @Summary Daily Series
// @Description Per-day income, expense and running balance up to today
// @Tags Analytics
// @Produce json
// @Success 200 {object} models.DailySeries
// @Router /analytics/daily [get]
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	if s, ok := h.summary(c); ok {
		c.JSON(http.StatusOK, s.Series)
	}
}

// @Summary Anomalies
// @Tags Analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /analytics/anomalies [get]
func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	if s, ok := h.summary(c); ok {
		c.JSON(http.StatusOK, gin.H{"anomalies": s.Anomalies})
	}
}

// @Summary Insights
// @Tags Analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /analytics/insights [get]
func (h *AnalyticsHandler) Insights(c *gin.Context) {
	if s, ok := h.summary(c); ok {
		c.JSON(http.StatusOK, gin.H{"insights": s.Insights})
	}
}
