package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	"sitetrack/repository"
	"sitetrack/services"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws regular text onto the card below the QR code
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold draws the field labels in bold
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateStructureQRCode godoc
// @Summary      Generate a site QR card for a structure
// @Description  The QR payload carries project and structure ids plus current
// @Description  progress; the card below shows human-readable details for the
// @Description  site board printout.
// @Tags         qr
// @Produce      image/jpeg
// @Param        projectId    path      string  true  "Project ID"
// @Param        structureId  path      string  true  "Structure ID"
// @Success      200          {file}    file    "JPEG image"
// @Failure      404          {object}  models.ErrorResponse
// @Router       /api/structures/{projectId}/{structureId}/qrcode [get]
func GenerateStructureQRCode(store repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadPreparedProject(c, store, c.Param("projectId"))
		if !ok {
			return
		}

		structureID := c.Param("structureId")
		var structure *struct {
			id, name, typ, location, status string
			progress                        int
		}
		for _, s := range project.Structures {
			if s.ID == structureID {
				structure = &struct {
					id, name, typ, location, status string
					progress                        int
				}{s.ID, s.Name, s.Type, s.Location, s.Status, services.CalculateOverallProgress(s)}
				break
			}
		}
		if structure == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Structure not found"})
			return
		}

		qrData := struct {
			ProjectID   string `json:"projectId"`
			StructureID string `json:"structureId"`
			Progress    int    `json:"progress"`
		}{
			ProjectID:   project.ID,
			StructureID: structure.id,
			Progress:    structure.progress,
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal structure data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 5*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "Structure:")
		addLabel(combinedImg, xPos+120, startY, truncateLabel(structure.name, 30))

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Project:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, truncateLabel(project.Name, 30))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Type:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, truncateLabel(structure.typ, 25))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Location:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, truncateLabel(structure.location, 25))

		addLabelBold(combinedImg, xPos, startY+4*lineHeight, "Progress:")
		addLabel(combinedImg, xPos+120, startY+4*lineHeight, fmt.Sprintf("%d%% (%s)", structure.progress, structure.status))

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
