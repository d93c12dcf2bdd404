package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/services"
)

const maxImportSize = 10 << 20

var exportContentTypes = map[string]string{
	services.ExportFormatCSV:  "text/csv",
	services.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	services.ExportFormatPDF:  "application/pdf",
}

type LedgerHandler struct {
	ledgerService *services.LedgerService
	duesService   *services.DuesService
	exportService *services.ExportService
}

func NewLedgerHandler(ledgerService *services.LedgerService, duesService *services.DuesService, exportService *services.ExportService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		duesService:   duesService,
		exportService: exportService,
	}
}

// @Summary List Transactions
// @Description Ledger entries in date order, optionally filtered
// @Tags Ledger
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "income or expense"
// @Param category query string false "Category"
// @Success 200 {object} map[string]interface{}
// @Router /transactions [get]
func (h *LedgerHandler) Index(c *gin.Context) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txs, err := h.ledgerService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "totals": services.ComputeTotals(txs)})
}

// @Summary Get Transaction
// @Tags Ledger
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} map[string]string
// @Router /transactions/{transaction_id} [get]
func (h *LedgerHandler) Show(c *gin.Context) {
	tx, err := h.ledgerService.FindByID(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// @Summary Create Transaction
// @Description Manual ledger entry. Dues income is booked through the dues endpoints.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param request body services.TransactionInput true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} map[string]string
// @Router /transactions [post]
func (h *LedgerHandler) Create(c *gin.Context) {
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "transaction", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// @Summary Update Transaction
// @Tags Ledger
// @Accept json
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Param request body services.TransactionInput true "Transaction"
// @Success 200 {object} models.Transaction
// @Failure 409 {object} map[string]string
// @Router /transactions/{transaction_id} [put]
func (h *LedgerHandler) Update(c *gin.Context) {
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "transaction", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerService.Update(c.Request.Context(), c.Param("transaction_id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// @Summary Delete Transaction
// @Tags Ledger
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /transactions/{transaction_id} [delete]
func (h *LedgerHandler) Delete(c *gin.Context) {
	if err := h.ledgerService.Delete(c.Request.Context(), c.Param("transaction_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaksi dihapus"})
}

// @Summary Import Transactions
// @Description Import a CSV or XLSX ledger file. Any invalid row rejects the whole file.
// @Tags Ledger
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Ledger file"
// @Param format query string false "csv or xlsx (defaults to the file extension)"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} map[string]string
// @Router /transactions/import [post]
func (h *LedgerHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file wajib diunggah"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ukuran file maksimal 10MB"})
		return
	}

	format := c.Query("format")
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.duesService.ImportLedger(c.Request.Context(), file, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Export Transactions
// @Description Download the filtered ledger
// @Tags Ledger
// @Produce application/octet-stream
// @Param format query string false "csv (default), xlsx or pdf"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "income or expense"
// @Param category query string false "Category"
// @Success 200 {file} file "transaksi.csv"
// @Router /transactions/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", services.ExportFormatCSV))

	data, filename, err := h.exportService.Export(c.Request.Context(), format, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, exportContentTypes[format], filename, data)
}
