package variantcontroller

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/models"
)

type exportLine struct {
	Slug    string
	Variant models.ProductVariant
}

func curatorVariants(db *gorm.DB, curatorID string) ([]exportLine, error) {
	var products []models.Product
	if err := db.Preload("Variants").
		Where("curator_id = ?", curatorID).
		Order("slug").
		Find(&products).Error; err != nil {
		return nil, err
	}

	var lines []exportLine
	for _, p := range products {
		for _, v := range p.Variants {
			lines = append(lines, exportLine{Slug: p.Slug, Variant: v})
		}
	}
	return lines, nil
}

// WriteVariantsCSV emits the curator's full variant inventory in the
// same column order the importer accepts, empty SKU cell when absent.
func WriteVariantsCSV(db *gorm.DB, curatorID string, w io.Writer) error {
	lines, err := curatorVariants(db, curatorID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, line := range lines {
		record := []string{
			line.Slug,
			line.Variant.Size,
			line.Variant.Color,
			strconv.Itoa(line.Variant.Stock),
			line.Variant.SKU,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportVariantsCSV downloads the inventory as CSV.
func ExportVariantsCSV(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		c.Header("Content-Disposition", "attachment; filename=inventory.csv")
		c.Header("Content-Type", "text/csv")

		if err := WriteVariantsCSV(db, curatorID, c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export inventory"})
			return
		}
	}
}

// ExportVariantsExcel downloads the same inventory as a spreadsheet.
func ExportVariantsExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		lines, err := curatorVariants(db, curatorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Inventory")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range csvHeader {
			headerRow.AddCell().SetValue(h)
		}

		for _, line := range lines {
			row := sheet.AddRow()
			row.AddCell().SetValue(line.Slug)
			row.AddCell().SetValue(line.Variant.Size)
			row.AddCell().SetValue(line.Variant.Color)
			row.AddCell().SetValue(line.Variant.Stock)
			row.AddCell().SetValue(line.Variant.SKU)
		}

		c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
			return
		}
	}
}
