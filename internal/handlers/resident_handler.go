package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/services"
)

type ResidentHandler struct {
	residentService *services.ResidentService
}

func NewResidentHandler(residentService *services.ResidentService) *ResidentHandler {
	return &ResidentHandler{residentService: residentService}
}

// @Summary List Residents
// @Tags Residents
// @Produce json
// @Param active query bool false "Only active residents"
// @Success 200 {object} map[string]interface{}
// @Router /residents [get]
func (h *ResidentHandler) Index(c *gin.Context) {
	residents, err := h.residentService.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"residents": residents})
}

// @Summary Replace Residents
// @Description Replace the roster. Accepts {"residents": [...]} or a bare array.
// @Tags Residents
// @Accept json
// @Produce json
// @Param request body []models.Resident true "Residents"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /residents [put]
func (h *ResidentHandler) Replace(c *gin.Context) {
	var residents []models.Resident
	if err := BindNestedOrFlat(c, "residents", &residents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.residentService.Replace(c.Request.Context(), residents); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"residents": residents})
}
