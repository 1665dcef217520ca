package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sitetrack/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProjectStore struct {
	mock.Mock
}

func (m *mockProjectStore) Get(ctx context.Context, id string) (models.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *mockProjectStore) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectStore) Create(ctx context.Context, p models.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectStore) Save(ctx context.Context, p models.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProjectStore) LogActivity(ctx context.Context, projectID, action, entity, entityID, performedBy string) {
	m.Called(ctx, projectID, action, entity, entityID, performedBy)
}

func testProject() models.Project {
	return models.Project{
		ID:     "prj-1",
		Name:   "NH-48 Package 3",
		Status: "Ongoing",
		BOQ: []models.BOQItem{
			{ID: "boq-1", Quantity: 100, Rate: 4800, Amount: 480000, CompletedQuantity: 50},
		},
		Structures: []models.StructureAsset{
			{
				ID:   "str-1",
				Name: "Minor Bridge CH 12+400",
				Components: []models.StructureComponent{
					{ID: "cmp-1", Name: "Pier P2 shaft", TotalQuantity: 10, CompletedQuantity: 5, BOQItemID: "boq-1"},
				},
			},
		},
		Materials: []models.Material{
			{ID: "mat-1", Name: "Cement", Unit: "bag", Quantity: 8, ReorderLevel: 10},
		},
	}
}

func TestGetProjectEmbedsFreshProgress(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)

	r := gin.New()
	r.GET("/api/projects/:id", GetProject(store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/prj-1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "prj-1", resp.Project.ID)
	require.Len(t, resp.Progress.Structures, 1)
	assert.Equal(t, 50, resp.Progress.Structures[0].Progress)
	assert.Equal(t, 50, resp.Progress.BOQProgress)
	assert.Equal(t, 1, resp.Progress.StockHealth["critical"])
	store.AssertExpectations(t)
}

func TestGetProjectMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "nope").Return(models.Project{}, models.ErrProjectNotFound)

	r := gin.New()
	r.GET("/api/projects/:id", GetProject(store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProjectPersistsLegacyMigration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	legacy := testProject()
	legacy.Materials = nil
	legacy.AgencyMaterials = []models.AgencyMaterial{
		{ID: "am-1", Name: "Steel", Unit: "MT", Quantity: 40, Rate: 52000},
	}

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(legacy, nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		return len(p.Materials) == 1 && p.Materials[0].Name == "Steel"
	})).Return(nil)

	r := gin.New()
	r.GET("/api/projects/:id", GetProject(store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/prj-1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestAddWorkLogUpdatesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		cmp := p.Structures[0].Components[0]
		return cmp.CompletedQuantity == 8 && p.BOQ[0].CompletedQuantity == 53
	})).Return(nil)
	store.On("LogActivity", mock.Anything, "prj-1", "add", "worklog", "cmp-1", mock.Anything).Return()

	r := gin.New()
	r.POST("/api/projects/:id/structures/:structureId/components/:componentId/worklogs", AddWorkLog(store))

	body, _ := json.Marshal(models.WorkLogRequest{Quantity: 3, Date: "2024-01-15", BOQItemID: "boq-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/prj-1/structures/str-1/components/cmp-1/worklogs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 80, resp.Progress.Structures[0].Progress)
	store.AssertExpectations(t)
}

func TestAddWorkLogUnknownComponent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)

	r := gin.New()
	r.POST("/api/projects/:id/structures/:structureId/components/:componentId/worklogs", AddWorkLog(store))

	body, _ := json.Marshal(models.WorkLogRequest{Quantity: 3})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/projects/prj-1/structures/str-1/components/ghost/worklogs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertNotCalled(t, "Save")
}

func TestValidateProjectInput(t *testing.T) {
	assert.Error(t, ValidateProjectInput(&models.Project{Name: "", Status: "Ongoing"}))
	assert.Error(t, ValidateProjectInput(&models.Project{Name: "P", Status: "Bogus"}))
	assert.NoError(t, ValidateProjectInput(&models.Project{Name: "P", Status: "Ongoing"}))
}

func TestCreateProjectFillsGeneratedIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
		if p.Code == "" || !strings.HasPrefix(p.Code, "NH48-") {
			return false
		}
		if !strings.HasPrefix(p.BOQ[0].ID, "boq-") {
			return false
		}
		// Supplied ids survive; only the empty ones are filled in.
		return p.Structures[0].ID == "str-custom" &&
			strings.HasPrefix(p.Structures[0].Components[0].ID, "cmp-") &&
			strings.HasPrefix(p.Structures[1].ID, "str-")
	})).Return(nil)
	store.On("LogActivity", mock.Anything, mock.Anything, "create", "project", mock.Anything, mock.Anything).Return()

	r := gin.New()
	r.POST("/api/projects", CreateProject(store))

	body, _ := json.Marshal(models.Project{
		Name:   "NH-48 Package 3",
		Status: "Ongoing",
		BOQ:    []models.BOQItem{{Description: "Earthwork", Quantity: 1000}},
		Structures: []models.StructureAsset{
			{
				ID:         "str-custom",
				Name:       "Minor Bridge CH 12+400",
				Components: []models.StructureComponent{{Name: "Pier P2 shaft", TotalQuantity: 10}},
			},
			{Name: "Culvert CH 14+100"},
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "prj-"))
	assert.NotEmpty(t, created.Code)
	store.AssertExpectations(t)
}
