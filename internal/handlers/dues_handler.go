package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/services"
)

type DuesHandler struct {
	duesService   *services.DuesService
	configService *services.DuesConfigService
}

func NewDuesHandler(duesService *services.DuesService, configService *services.DuesConfigService) *DuesHandler {
	return &DuesHandler{duesService: duesService, configService: configService}
}

type GenerateDuesRequest struct {
	Period string `json:"periode"`
	Amount int64  `json:"amount"`
}

type MarkDuesRequest struct {
	Period     string            `json:"periode"`
	ResidentID models.ResidentID `json:"warga_id" binding:"required"`
	Paid       *bool             `json:"paid" binding:"required"`
}

type UpdateNominalRequest struct {
	Period string `json:"periode" binding:"required"`
	Amount int64  `json:"amount"`
}

// @Summary Dues Status
// @Description Paid and pending residents of a period. Runs the closing policy.
// @Tags Dues
// @Produce json
// @Param periode query string false "Period (YYYY-MM), defaults to the current month"
// @Success 200 {object} models.DuesStatus
// @Router /dues/status [get]
func (h *DuesHandler) Status(c *gin.Context) {
	status, err := h.duesService.Status(c.Request.Context(), c.Query("periode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Generate Dues
// @Description Create the dues config of the current month
// @Tags Dues
// @Accept json
// @Produce json
// @Param request body GenerateDuesRequest true "Dues"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Router /dues/generate [post]
func (h *DuesHandler) Generate(c *gin.Context) {
	var req GenerateDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.duesService.Generate(ctx, req.Period, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	status, err := h.duesService.Status(ctx, req.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// @Summary Mark Dues
// @Description Mark or unmark one resident's payment. The ledger follows.
// @Tags Dues
// @Accept json
// @Produce json
// @Param request body MarkDuesRequest true "Payment"
// @Success 200 {object} models.DuesStatus
// @Failure 404 {object} map[string]string
// @Router /dues/mark [post]
func (h *DuesHandler) Mark(c *gin.Context) {
	var req MarkDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.duesService.Mark(c.Request.Context(), req.Period, string(req.ResidentID), *req.Paid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Update Dues Amount
// @Description Reprice a period and every dues entry already booked for it
// @Tags Dues
// @Accept json
// @Produce json
// @Param request body UpdateNominalRequest true "Amount"
// @Success 200 {object} map[string]interface{}
// @Router /dues/update-nominal [post]
func (h *DuesHandler) UpdateNominal(c *gin.Context) {
	var req UpdateNominalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.duesService.UpdateAmount(c.Request.Context(), req.Period, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periode": req.Period, "amount": req.Amount, "updated_entries": updated})
}

// @Summary List Dues Configs
// @Tags Dues
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dues/configs [get]
func (h *DuesHandler) Configs(c *gin.Context) {
	configs, err := h.configService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// @Summary Reconcile Dues
// @Description Repair drift between the paid sets and the ledger
// @Tags Dues
// @Produce json
// @Success 200 {object} services.ReconcileResult
// @Router /dues/reconcile [post]
func (h *DuesHandler) Reconcile(c *gin.Context) {
	result, err := h.duesService.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Dues Mode
// @Tags Dues
// @Produce json
// @Success 200 {object} map[string]string
// @Router /dues/mode [get]
func (h *DuesHandler) Mode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": h.duesService.Mode(c.Request.Context())})
}

// @Summary Reset Dues Mode
// @Description Leave local mode and retry the remote dues service
// @Tags Dues
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /dues/mode/reset [post]
func (h *DuesHandler) ResetMode(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.duesService.ResetMode(ctx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": h.duesService.Mode(ctx)})
}
