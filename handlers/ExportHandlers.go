package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportBOQExcel godoc
// @Summary      Export the project BOQ as an Excel workbook
// @Description  One summary sheet plus a BOQ sheet with per-line completion.
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Project ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/export/boq [get]
func ExportBOQExcel(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
			}
		}()

		// Summary sheet
		summarySheet := "Summary"
		index, err := f.NewSheet(summarySheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating summary sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		f.SetCellValue(summarySheet, "A1", "BOQ Export Summary")
		f.SetCellValue(summarySheet, "A2", "Project ID")
		f.SetCellValue(summarySheet, "B2", project.ID)
		f.SetCellValue(summarySheet, "A3", "Project Name")
		f.SetCellValue(summarySheet, "B3", project.Name)
		f.SetCellValue(summarySheet, "A4", "BOQ Lines")
		f.SetCellValue(summarySheet, "B4", len(project.BOQ))
		f.SetCellValue(summarySheet, "A5", "Financial Progress (%)")
		f.SetCellValue(summarySheet, "B5", services.CalculateBOQProgress(project.BOQ))
		f.SetCellValue(summarySheet, "A6", "Exported At")
		f.SetCellValue(summarySheet, "B6", time.Now().Format("2006-01-02 15:04"))

		titleStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 14},
		})
		if err == nil {
			f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)
		}

		// BOQ sheet
		boqSheet := "BOQ"
		if _, err := f.NewSheet(boqSheet); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating BOQ sheet"})
			return
		}

		headers := []string{"Item No", "Description", "Unit", "Quantity", "Rate", "Amount", "Completed Qty", "Completion %", "Category", "Location"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(boqSheet, cell, h)
		}

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		})
		if err == nil {
			endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
			f.SetCellStyle(boqSheet, "A1", endCell, headerStyle)
		}

		for row, item := range project.BOQ {
			completion := 0.0
			if item.Quantity > 0 {
				completion = (item.CompletedQuantity / item.Quantity) * 100
			}
			values := []interface{}{
				item.ItemNo,
				item.Description,
				item.Unit,
				item.Quantity,
				item.Rate,
				item.Amount,
				item.CompletedQuantity,
				fmt.Sprintf("%.1f", completion),
				item.Category,
				item.Location,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(boqSheet, cell, v)
			}
		}

		safeName := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-", "<", "-", ">", "-", "|", "-").Replace(project.Name)
		filename := fmt.Sprintf("boq_export_%s.xlsx", safeName)
		escaped := url.PathEscape(filename)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, escaped))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}
