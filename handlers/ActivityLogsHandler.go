package handlers

import (
	"net/http"
	"strconv"

	"sitetrack/repository"

	"github.com/gin-gonic/gin"
)

// GetActivityLogs godoc
// @Summary      Recent activity for a project
// @Tags         activity
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        limit  query     int     false  "Max rows (default 50)"
// @Success      200    {array}   models.ActivityLogGorm
// @Failure      500    {object}  models.ErrorResponse
// @Router       /api/projects/{id}/activity [get]
func GetActivityLogs(repo *repository.ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		logs, err := repo.ActivityLogs(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, logs)
	}
}
