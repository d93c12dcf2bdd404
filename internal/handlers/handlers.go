package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/services"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Ledger       *LedgerHandler
	Dues         *DuesHandler
	Report       *ReportHandler
	Analytics    *AnalyticsHandler
	Resident     *ResidentHandler
	Notification *NotificationHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(svcs.Dues),
		Ledger:       NewLedgerHandler(svcs.Ledger, svcs.Dues, svcs.Export),
		Dues:         NewDuesHandler(svcs.Dues, svcs.DuesConfig),
		Report:       NewReportHandler(svcs.Report),
		Analytics:    NewAnalyticsHandler(svcs.Analytics),
		Resident:     NewResidentHandler(svcs.Resident),
		Notification: NewNotificationHandler(svcs.Notification),
		Job:          NewJobHandler(svcs.Job),
	}
}

// respondError writes err as {"error": message}. Business rejections keep their status
// and message; anything else is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := services.StatusCode(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "terjadi kesalahan pada server"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
