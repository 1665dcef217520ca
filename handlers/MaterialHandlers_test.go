package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitetrack/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func importRequest(t *testing.T, store *mockProjectStore, resources []map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.POST("/api/projects/:id/import/legacy", ImportLegacyResources(store))

	body, err := json.Marshal(models.LegacyImportRequest{Resources: resources})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/prj-1/import/legacy", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestImportCanonicalRecordPassesThroughUntouched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		if len(p.Materials) != 2 {
			return false
		}
		got := p.Materials[1]
		// No normalizer defaults: the canonical reorder level of 3 survives
		// instead of being coerced to 10, and the id is kept.
		return got.ID == "mat-42" && got.Name == "Bitumen" && got.ReorderLevel == 3
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "import", "legacy", "prj-1", mock.Anything).Return()

	w := importRequest(t, store, []map[string]any{
		{
			"id":           "mat-42",
			"name":         "Bitumen",
			"unit":         "MT",
			"quantity":     12.0,
			"reorderLevel": 3.0,
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestImportLegacyRecordIsNormalized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		if len(p.Materials) != 2 {
			return false
		}
		got := p.Materials[1]
		return got.Name == "Binding Wire" && got.ReorderLevel == 10
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "import", "legacy", "prj-1", mock.Anything).Return()

	// Legacy shape: itemName without a canonical name, so the record runs
	// through the normalizer and picks up the default reorder level.
	w := importRequest(t, store, []map[string]any{
		{
			"itemName":      "Binding Wire",
			"totalQuantity": 120.0,
			"unit":          "kg",
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestImportRoutesVehicleRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		return len(p.Materials) == 1 && len(p.Vehicles) == 1 &&
			p.Vehicles[0].PlateNumber == "MH-12-AB-1234"
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "import", "legacy", "prj-1", mock.Anything).Return()

	w := importRequest(t, store, []map[string]any{
		{
			"name":        "Tata Tipper 2518",
			"plateNumber": "MH-12-AB-1234",
			"driver":      "R. Sharma",
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestAddMaterialRecomputesTotalValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		got := p.Materials[len(p.Materials)-1]
		return got.TotalValue == 500*385 && got.ID != ""
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "add", "material", mock.Anything, mock.Anything).Return()

	r := gin.New()
	r.POST("/api/projects/:id/materials", AddMaterial(store))

	body, _ := json.Marshal(models.Material{
		Name:     "OPC 53 Cement",
		Unit:     "bag",
		Quantity: 500,
		UnitCost: 385,
		// A stale client-supplied total must be overwritten.
		TotalValue: 1,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/prj-1/materials", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	store.AssertExpectations(t)
}

func TestImportUnknownShapeFallsBackToMaterial(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		return len(p.Materials) == 2 && p.Materials[1].Name == "Unknown Thing"
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "import", "legacy", "prj-1", mock.Anything).Return()

	w := importRequest(t, store, []map[string]any{
		{"name": "Unknown Thing"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}
