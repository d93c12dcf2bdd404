package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// @Summary List Reports
// @Description Saved financial reports, newest first
// @Tags Reports
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /reports [get]
func (h *ReportHandler) Index(c *gin.Context) {
	reports, err := h.reportService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// @Summary Get Report
// @Tags Reports
// @Produce json
// @Param report_id path string true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} map[string]string
// @Router /reports/{report_id} [get]
func (h *ReportHandler) Show(c *gin.Context) {
	report, err := h.reportService.FindByID(c.Request.Context(), c.Param("report_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// @Summary Create Report
// @Description Snapshot the ledger totals over a date range. An optional snapshot
// @Description transaction is booked into the ledger.
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body services.ReportInput true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} map[string]string
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var input services.ReportInput
	if err := BindNestedOrFlat(c, "report", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// @Summary Delete Report
// @Description Delete a report and roll back the transaction and dues config it brought in
// @Tags Reports
// @Produce json
// @Param report_id path string true "Report ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reports/{report_id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reportService.Delete(c.Request.Context(), c.Param("report_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Laporan dihapus"})
}

// @Summary Report PDF
// @Tags Reports
// @Produce application/pdf
// @Param report_id path string true "Report ID"
// @Success 200 {file} file "laporan.pdf"
// @Router /reports/{report_id}/pdf [get]
func (h *ReportHandler) PDF(c *gin.Context) {
	data, filename, err := h.reportService.PDF(c.Request.Context(), c.Param("report_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/pdf", filename, data)
}
