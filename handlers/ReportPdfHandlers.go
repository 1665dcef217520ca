package handlers

import (
	"fmt"
	"net/http"
	"time"

	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// GenerateProgressPDF godoc
// @Summary      Generate a project progress summary PDF
// @Description  Structure-wise physical progress, BOQ financial progress,
// @Description  schedule burn and stock health in one printable report.
// @Tags         PDF
// @Produce      application/pdf
// @Param        id   path      string  true  "Project ID"
// @Success      200  {file}    file    "PDF file"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/report/pdf [get]
func GenerateProgressPDF(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("id"))
		if !ok {
			return
		}

		progress := projectProgress(project)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()

		pdf.SetFillColor(0, 0, 0)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 18)
		pdf.CellFormat(190, 12, "Project Progress Report", "1", 1, "C", true, 0, "")
		pdf.SetFillColor(255, 255, 255)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, fmt.Sprintf("Project: %s (%s)", project.Name, project.ID))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(190, 6, fmt.Sprintf("Status: %s", project.Status))
		pdf.Ln(4)
		pdf.Cell(190, 6, fmt.Sprintf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05")))
		pdf.Ln(10)

		// Summary block
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 10, "Summary", "1", 1, "C", true, 0, "")
		pdf.SetFillColor(255, 255, 255)
		pdf.Ln(5)

		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(95, 8, "BOQ Financial Progress", "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, fmt.Sprintf("%d%%", progress.BOQProgress), "1", 1, "C", false, 0, "")
		pdf.CellFormat(95, 8, "Schedule Elapsed", "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, fmt.Sprintf("%d%%", progress.ScheduleProgress), "1", 1, "C", false, 0, "")
		pdf.CellFormat(95, 8, "Structures", "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, fmt.Sprintf("%d", len(project.Structures)), "1", 1, "C", false, 0, "")
		pdf.CellFormat(95, 8, "Materials Critical / Warning / Healthy", "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, fmt.Sprintf("%d / %d / %d",
			progress.StockHealth[services.StockCritical],
			progress.StockHealth[services.StockWarning],
			progress.StockHealth[services.StockHealthy]), "1", 1, "C", false, 0, "")
		pdf.Ln(10)

		// Structure table
		pdf.SetFillColor(0, 0, 0)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 10, "Structure Progress", "1", 1, "C", true, 0, "")
		pdf.SetFillColor(255, 255, 255)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(5)

		pdf.SetFillColor(50, 50, 50)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(70, 8, "Structure", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 8, "Type", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 8, "Status", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 8, "Progress", "1", 1, "C", true, 0, "")
		pdf.SetFillColor(255, 255, 255)
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Arial", "", 9)
		for _, s := range project.Structures {
			pdf.CellFormat(70, 8, s.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 8, s.Type, "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 8, s.Status, "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 8, fmt.Sprintf("%d%%", services.CalculateOverallProgress(s)), "1", 1, "C", false, 0, "")
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=progress_report_%s.pdf", project.ID))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating PDF"})
			return
		}
	}
}
