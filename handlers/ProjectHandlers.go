package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"sitetrack/models"
	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
)

func ValidateProjectInput(project *models.Project) error {
	if project.Name == "" || project.Status == "" {
		return errors.New("required fields cannot be null or empty")
	}

	validStatuses := map[string]bool{
		"Completed": true,
		"Inactive":  true,
		"Ongoing":   true,
		"Cancelled": true,
		"Critical":  true,
	}

	if !validStatuses[project.Status] {
		return errors.New("invalid project status; allowed values are Completed, Inactive, Ongoing, Cancelled, Critical")
	}

	return nil
}

// ensureDocumentIDs backfills the generated identifiers a client is allowed
// to omit: the project code and the ids of BOQ lines, structures and
// components. Ids the client did supply are kept.
func ensureDocumentIDs(project *models.Project) {
	if project.Code == "" {
		project.Code = repository.GenerateProjectCode(project.Name)
	}
	for i := range project.BOQ {
		if project.BOQ[i].ID == "" {
			project.BOQ[i].ID = repository.GenerateBOQItemID()
		}
	}
	for i := range project.Structures {
		if project.Structures[i].ID == "" {
			project.Structures[i].ID = repository.GenerateStructureID("str")
		}
		for j := range project.Structures[i].Components {
			if project.Structures[i].Components[j].ID == "" {
				project.Structures[i].Components[j].ID = repository.GenerateStructureID("cmp")
			}
		}
	}
}

// projectProgress recomputes every rollup from the document. Stored
// percentages are never trusted.
func projectProgress(p models.Project) models.ProjectProgressResponse {
	structures := []models.StructureProgressResponse{}
	for _, s := range p.Structures {
		components := []models.ComponentProgressResponse{}
		for _, cmp := range s.Components {
			components = append(components, models.ComponentProgressResponse{
				ComponentID: cmp.ID,
				Name:        cmp.Name,
				Progress:    services.CalculateComponentProgress(cmp),
			})
		}
		structures = append(structures, models.StructureProgressResponse{
			StructureID: s.ID,
			Name:        s.Name,
			Progress:    services.CalculateOverallProgress(s),
			Components:  components,
		})
	}

	return models.ProjectProgressResponse{
		BOQProgress:      services.CalculateBOQProgress(p.BOQ),
		ScheduleProgress: services.CalculateScheduleProgress(p.Schedule, time.Now()),
		Structures:       structures,
		StockHealth:      services.StockStatusCounts(p.Materials),
	}
}

// loadPreparedProject fetches a project and runs the legacy-material migration
// on it. When the migration changed the document the migrated copy is
// persisted before use, so old projects converge on first read.
func loadPreparedProject(c *gin.Context, store repository.ProjectStore, id string) (models.Project, bool) {
	project, err := store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return models.Project{}, false
	}

	prepared := services.PrepareProjectWithMaterials(project)
	if len(prepared.Materials) != len(project.Materials) {
		if err := store.Save(c.Request.Context(), prepared); err != nil {
			log.Println("failed to persist migrated materials:", err)
		}
	}

	return prepared, true
}

// GetProjects godoc
// @Summary      List all projects
// @Tags         projects
// @Produce      json
// @Success      200  {array}   models.Project
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/projects [get]
func GetProjects(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// GetProject godoc
// @Summary      Get a project with freshly computed progress
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  models.ProjectResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id} [get]
func GetProject(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		c.JSON(http.StatusOK, models.ProjectResponse{
			Project:  project,
			Progress: projectProgress(project),
		})
	}
}

// CreateProject godoc
// @Summary      Create a new project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project  body      models.Project  true  "Project document"
// @Success      201      {object}  models.Project
// @Failure      400      {object}  models.ErrorResponse
// @Router       /api/projects [post]
func CreateProject(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := ValidateProjectInput(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if project.ID == "" {
			project.ID = repository.GenerateProjectID()
		}
		ensureDocumentIDs(&project)

		if err := store.Create(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "create", "project", project.ID, currentUserEmail(c))
		c.JSON(http.StatusCreated, project)
	}
}

// UpdateProject godoc
// @Summary      Replace a project document
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Project ID"
// @Param        project  body      models.Project  true  "Project document"
// @Success      200      {object}  models.Project
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/projects/{id} [put]
func UpdateProject(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		project.ID = c.Param("id")
		if err := ValidateProjectInput(&project); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ensureDocumentIDs(&project)

		if err := store.Save(c.Request.Context(), project); err != nil {
			if errors.Is(err, models.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "update", "project", project.ID, currentUserEmail(c))
		c.JSON(http.StatusOK, project)
	}
}

// DeleteProject godoc
// @Summary      Delete a project
// @Tags         projects
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id} [delete]
func DeleteProject(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := store.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, models.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), id, "delete", "project", id, currentUserEmail(c))
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	}
}

// currentUserEmail reads the email set by the session middleware, if any.
func currentUserEmail(c *gin.Context) string {
	if v, ok := c.Get("userEmail"); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return "system"
}
