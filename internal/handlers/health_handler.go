package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/services"
)

type HealthHandler struct {
	duesService *services.DuesService
}

func NewHealthHandler(duesService *services.DuesService) *HealthHandler {
	return &HealthHandler{duesService: duesService}
}

// @Summary Health Check
// @Description Checks if the API is running and reports the dues mode
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "komplek-api",
		"version":   "1.0.0",
		"dues_mode": h.duesService.Mode(c.Request.Context()),
	})
}
