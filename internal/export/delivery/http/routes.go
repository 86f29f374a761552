package http

import (
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/labstack/echo/v4"
)

func MapExportRoutes(exportGroup *echo.Group, h export.Handler) {
	exportGroup.POST("", h.SubmitExport())
	exportGroup.GET("/dependencies", h.GetDependencies())
	exportGroup.GET("/jobs/:job_id", h.GetJob())
	exportGroup.POST("/jobs/:job_id/cancel", h.CancelJob())
	exportGroup.GET("/presentations/:presentation_id/active", h.GetActiveJob())
	exportGroup.GET("/presentations/:presentation_id/video", h.GetVideo())
	exportGroup.GET("/presentations/:presentation_id/history", h.GetHistory())
}
