package handlers

import (
	"net/http"

	"sitetrack/models"
	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
)

// AddWorkLog godoc
// @Summary      Record work done against a structure component
// @Description  Appends a work log, bumps the component's completed quantity
// @Description  and the linked BOQ item's completed quantity in lock step.
// @Tags         worklogs
// @Accept       json
// @Produce      json
// @Param        id           path      string                true  "Project ID"
// @Param        structureId  path      string                true  "Structure ID"
// @Param        componentId  path      string                true  "Component ID"
// @Param        worklog      body      models.WorkLogRequest true  "Work log entry"
// @Success      200          {object}  models.ProjectResponse
// @Failure      400          {object}  models.ErrorResponse
// @Failure      404          {object}  models.ErrorResponse
// @Router       /api/projects/{id}/structures/{structureId}/components/{componentId}/worklogs [post]
func AddWorkLog(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.WorkLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		// URL segments win over body values
		req.StructureID = c.Param("structureId")
		req.ComponentID = c.Param("componentId")

		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be greater than zero"})
			return
		}

		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		updated, changed := services.AddWorkLog(project, req)
		if !changed {
			c.JSON(http.StatusNotFound, gin.H{"error": "Structure or component not found"})
			return
		}

		if err := store.Save(c.Request.Context(), updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), updated.ID, "add", "worklog", req.ComponentID, currentUserEmail(c))
		c.JSON(http.StatusOK, models.ProjectResponse{
			Project:  updated,
			Progress: projectProgress(updated),
		})
	}
}

// DeleteWorkLog godoc
// @Summary      Remove a work log entry
// @Description  Deletes the entry and rolls back the component and BOQ
// @Description  completed quantities it contributed, flooring at zero.
// @Tags         worklogs
// @Produce      json
// @Param        id           path      string  true  "Project ID"
// @Param        structureId  path      string  true  "Structure ID"
// @Param        componentId  path      string  true  "Component ID"
// @Param        logId        path      string  true  "Work log ID"
// @Success      200          {object}  models.ProjectResponse
// @Failure      404          {object}  models.ErrorResponse
// @Router       /api/projects/{id}/structures/{structureId}/components/{componentId}/worklogs/{logId} [delete]
func DeleteWorkLog(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		updated, changed := services.DeleteWorkLog(project, c.Param("structureId"), c.Param("componentId"), c.Param("logId"))
		if !changed {
			c.JSON(http.StatusNotFound, gin.H{"error": "Work log not found"})
			return
		}

		if err := store.Save(c.Request.Context(), updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), updated.ID, "delete", "worklog", c.Param("logId"), currentUserEmail(c))
		c.JSON(http.StatusOK, models.ProjectResponse{
			Project:  updated,
			Progress: projectProgress(updated),
		})
	}
}
