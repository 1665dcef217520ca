package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"sitetrack/models"
	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
)

// AddMaterial godoc
// @Summary      Add a material to a project
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id        path      string           true  "Project ID"
// @Param        material  body      models.Material  true  "Material"
// @Success      201       {object}  models.Material
// @Failure      400       {object}  models.ErrorResponse
// @Failure      404       {object}  models.ErrorResponse
// @Router       /api/projects/{id}/materials [post]
func AddMaterial(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var material models.Material
		if err := c.ShouldBindJSON(&material); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if material.Name == "" || material.Unit == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Material name and unit are required"})
			return
		}

		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		material = reconcileMaterial(material)
		project.Materials = append(project.Materials, material)

		if err := store.Save(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "add", "material", material.ID, currentUserEmail(c))
		c.JSON(http.StatusCreated, material)
	}
}

// UpdateMaterial godoc
// @Summary      Update a material
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id          path      string           true  "Project ID"
// @Param        materialId  path      string           true  "Material ID"
// @Param        material    body      models.Material  true  "Material"
// @Success      200         {object}  models.Material
// @Failure      404         {object}  models.ErrorResponse
// @Router       /api/projects/{id}/materials/{materialId} [put]
func UpdateMaterial(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var material models.Material
		if err := c.ShouldBindJSON(&material); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		materialID := c.Param("materialId")
		idx := -1
		for i := range project.Materials {
			if project.Materials[i].ID == materialID {
				idx = i
				break
			}
		}
		if idx < 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}

		material.ID = materialID
		material = reconcileMaterial(material)
		project.Materials[idx] = material

		if err := store.Save(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "update", "material", materialID, currentUserEmail(c))
		c.JSON(http.StatusOK, material)
	}
}

// DeleteMaterial godoc
// @Summary      Remove a material from a project
// @Tags         materials
// @Param        id          path      string  true  "Project ID"
// @Param        materialId  path      string  true  "Material ID"
// @Success      200         {object}  models.MessageResponse
// @Failure      404         {object}  models.ErrorResponse
// @Router       /api/projects/{id}/materials/{materialId} [delete]
func DeleteMaterial(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		materialID := c.Param("materialId")
		remaining := make([]models.Material, 0, len(project.Materials))
		found := false
		for _, m := range project.Materials {
			if m.ID == materialID {
				found = true
				continue
			}
			remaining = append(remaining, m)
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}

		project.Materials = remaining
		if err := store.Save(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "delete", "material", materialID, currentUserEmail(c))
		c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
	}
}

// GetMaterialStatus godoc
// @Summary      Stock status buckets for every material in a project
// @Tags         materials
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   models.MaterialStatusResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/materials/status [get]
func GetMaterialStatus(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		statuses := []models.MaterialStatusResponse{}
		for _, m := range project.Materials {
			statuses = append(statuses, models.MaterialStatusResponse{
				MaterialID:   m.ID,
				Name:         m.Name,
				Quantity:     m.Quantity,
				ReorderLevel: m.ReorderLevel,
				Status:       services.StockStatus(m.Quantity, m.ReorderLevel),
			})
		}

		c.JSON(http.StatusOK, statuses)
	}
}

// ImportLegacyResources godoc
// @Summary      Import raw legacy records into a project
// @Description  Legacy records are classified (vehicle, agency material,
// @Description  inventory item or material), normalized, and appended to the
// @Description  matching project collection. Canonical records pass through
// @Description  untouched.
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Project ID"
// @Param        payload  body      models.LegacyImportRequest true  "Raw legacy records"
// @Success      200      {object}  models.ProjectResponse
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.ErrorResponse
// @Router       /api/projects/{id}/import/legacy [post]
func ImportLegacyResources(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LegacyImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		for _, rec := range req.Resources {
			if rec == nil {
				continue
			}
			// Legacy records come back normalized; canonical ones come back
			// as-is, so no defaults are ever forced onto a canonical record.
			rec = services.AutoMigrateResource(rec)
			switch services.ClassifyResource(rec) {
			case models.KindVehicle:
				var v models.Vehicle
				if decodeRecord(rec, &v) {
					project.Vehicles = append(project.Vehicles, v)
				}
			case models.KindAgencyMaterial:
				var am models.AgencyMaterial
				if decodeRecord(rec, &am) {
					project.AgencyMaterials = append(project.AgencyMaterials, am)
				}
			case models.KindInventoryItem:
				var item models.InventoryItem
				if decodeRecord(rec, &item) {
					project.Inventory = append(project.Inventory, item)
				}
			default:
				var m models.Material
				if decodeRecord(rec, &m) {
					project.Materials = append(project.Materials, m)
				}
			}
		}

		if err := store.Save(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		store.LogActivity(c.Request.Context(), project.ID, "import", "legacy", project.ID, currentUserEmail(c))
		c.JSON(http.StatusOK, models.ProjectResponse{
			Project:  project,
			Progress: projectProgress(project),
		})
	}
}

// decodeRecord round-trips a JSON object into its typed struct, carrying
// unknown keys along. Records that cannot be re-marshalled are dropped.
func decodeRecord(rec map[string]any, out any) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// reconcileMaterial fills the derived and bookkeeping fields on every write.
func reconcileMaterial(m models.Material) models.Material {
	if m.ID == "" {
		m.ID = repository.GenerateMaterialID()
	}
	m.TotalValue = m.Quantity * m.UnitCost
	m.LastUpdated = time.Now().Format(time.RFC3339)
	return m
}
