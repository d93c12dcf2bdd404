package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API on the /api/v1 group
func RegisterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	v1.GET("/health", h.Health.Index)

	transactions := v1.Group("/transactions")
	{
		// static routes first so they are not matched as :transaction_id
		transactions.GET("", h.Ledger.Index)
		transactions.POST("", h.Ledger.Create)
		transactions.POST("/import", h.Ledger.Import)
		transactions.GET("/export", h.Ledger.Export)
		transactions.GET("/:transaction_id", h.Ledger.Show)
		transactions.PUT("/:transaction_id", h.Ledger.Update)
		transactions.DELETE("/:transaction_id", h.Ledger.Delete)
	}

	dues := v1.Group("/dues")
	{
		dues.GET("/status", h.Dues.Status)
		dues.GET("/configs", h.Dues.Configs)
		dues.POST("/generate", h.Dues.Generate)
		dues.POST("/mark", h.Dues.Mark)
		dues.POST("/update-nominal", h.Dues.UpdateNominal)
		dues.POST("/reconcile", h.Dues.Reconcile)
		dues.GET("/mode", h.Dues.Mode)
		dues.POST("/mode/reset", h.Dues.ResetMode)
	}

	reports := v1.Group("/reports")
	{
		reports.GET("", h.Report.Index)
		reports.POST("", h.Report.Create)
		reports.GET("/:report_id", h.Report.Show)
		reports.DELETE("/:report_id", h.Report.Delete)
		reports.GET("/:report_id/pdf", h.Report.PDF)
	}

	analytics := v1.Group("/analytics")
	{
		analytics.GET("/summary", h.Analytics.Summary)
		analytics.GET("/totals", h.Analytics.Totals)
		analytics.GET("/daily", h.Analytics.Daily)
		analytics.GET("/anomalies", h.Analytics.Anomalies)
		analytics.GET("/insights", h.Analytics.Insights)
	}

	v1.GET("/residents", h.Resident.Index)
	v1.PUT("/residents", h.Resident.Replace)

	notifications := v1.Group("/notifications")
	{
		notifications.GET("", h.Notification.Index)
		notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
		notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
	}

	v1.GET("/jobs/status", h.Job.Status)
}
