package tools

import (
	"context"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

// Diagnose checks every tool and never fails; problems are reported per item.
func Diagnose(ctx context.Context, tools ...Tool) models.DependencyReport {
	report := models.DependencyReport{
		GeneratedAt: time.Now().UTC(),
		Items:       make([]models.DependencyItem, 0, len(tools)),
	}
	for _, tool := range tools {
		item := models.DependencyItem{
			Name:    tool.Name(),
			Status:  models.DependencyStatusPass,
			Message: "available",
		}
		if err := tool.CheckAvailable(ctx); err != nil {
			item.Status = models.DependencyStatusFail
			item.Message = err.Error()
			report.HasFailures = true
		}
		report.Items = append(report.Items, item)
	}
	return report
}
