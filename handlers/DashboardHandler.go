package handlers

import (
	"net/http"
	"time"

	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
)

// GetProjectDashboard godoc
// @Summary      Project dashboard rollups
// @Description  Physical progress per structure, money-weighted BOQ progress,
// @Description  schedule burn and stock health counts, all recomputed from the
// @Description  document on every call.
// @Tags         dashboard
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/dashboard [get]
func GetProjectDashboard(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		progress := projectProgress(project)

		boqTotal := 0.0
		boqCompleted := 0.0
		for _, item := range project.BOQ {
			boqTotal += item.Amount
			if item.Quantity > 0 {
				boqCompleted += (item.CompletedQuantity / item.Quantity) * item.Amount
			}
		}

		openRFIs := 0
		for _, rfi := range project.RFIs {
			if rfi.Status == "open" {
				openRFIs++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"project_id":        project.ID,
			"name":              project.Name,
			"status":            project.Status,
			"boq_progress":      progress.BOQProgress,
			"boq_total_value":   boqTotal,
			"boq_earned_value":  boqCompleted,
			"schedule_progress": services.CalculateScheduleProgress(project.Schedule, time.Now()),
			"structures":        progress.Structures,
			"stock_health":      progress.StockHealth,
			"material_count":    len(project.Materials),
			"vehicle_count":     len(project.Vehicles),
			"open_rfis":         openRFIs,
		})
	}
}
