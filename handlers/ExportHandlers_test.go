package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBOQExcelWritesWorkbook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mockProjectStore)
	store.On("Get", mock.Anything, "prj-1").Return(testProject(), nil)

	r := gin.New()
	r.GET("/api/projects/:id/export/boq", ExportBOQExcel(store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects/prj-1/export/boq", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "boq_export_")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "NH-48 Package 3", name)

	progress, err := f.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "50", progress)

	header, err := f.GetCellValue("BOQ", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Item No", header)

	completed, err := f.GetCellValue("BOQ", "G2")
	require.NoError(t, err)
	assert.Equal(t, "50", completed)
}
