package variantcontroller

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/apperrors"
	"github.com/qatumarket/marketplace-api/models"
)

// CSV interchange format, also used on export:
//
//	productSlug,size,color,stock,sku
//
// SKU column is optional per row and empty on export when absent.
var csvHeader = []string{"productSlug", "size", "color", "stock", "sku"}

type importRow struct {
	Line  int
	Slug  string
	Size  string
	Color string
	Stock int
	SKU   string
}

// RowError points at one malformed row so the caller can fix the whole
// file in a single pass.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportVariants runs the two-phase-then-transactional bulk import:
// validate every row first (aggregating every structural error), resolve
// every slug to a product the curator owns, then apply all upserts in
// one transaction. A malformed file writes nothing.
func ImportVariants(db *gorm.DB, curatorID string, reader io.Reader) (*ImportSummary, []RowError, error) {
	rows, rowErrors, err := parseAndValidate(reader)
	if err != nil {
		return nil, nil, err
	}
	if len(rowErrors) > 0 {
		return nil, rowErrors, nil
	}

	productsBySlug, err := resolveSlugs(db, curatorID, rows)
	if err != nil {
		return nil, nil, err
	}

	summary := &ImportSummary{}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			product := productsBySlug[row.Slug]
			created, err := UpsertVariant(tx, product.ID, row.Size, row.Color, row.Stock, row.SKU)
			if err != nil {
				return err
			}
			if created {
				summary.Created++
			} else {
				summary.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return summary, nil, nil
}

// parseAndValidate is the no-writes phase: every row is checked and all
// structural errors collected before anything else happens.
func parseAndValidate(reader io.Reader) ([]importRow, []RowError, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1 // column-count errors are reported per row
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, apperrors.Validationf("malformed CSV: %v", err)
	}
	if len(records) < 2 {
		return nil, nil, apperrors.Validationf("file must contain a header and at least one data row")
	}

	var rows []importRow
	var rowErrors []RowError
	fail := func(line int, format string, args ...any) {
		rowErrors = append(rowErrors, RowError{Row: line, Message: fmt.Sprintf(format, args...)})
	}

	for i, record := range records[1:] {
		line := i + 1 // data rows are 1-based; the header is not counted

		if len(record) < 4 {
			fail(line, "expected at least 4 fields, got %d", len(record))
			continue
		}
		if len(record) > 5 {
			fail(line, "expected at most 5 fields, got %d", len(record))
			continue
		}

		row := importRow{
			Line:  line,
			Slug:  strings.TrimSpace(record[0]),
			Size:  strings.TrimSpace(record[1]),
			Color: strings.TrimSpace(record[2]),
		}
		if len(record) == 5 {
			row.SKU = strings.TrimSpace(record[4])
		}

		if row.Slug == "" {
			fail(line, "productSlug is required")
			continue
		}
		if row.Size == "" {
			fail(line, "size is required")
			continue
		}
		if row.Color == "" {
			fail(line, "color is required")
			continue
		}

		stock, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			fail(line, "stock must be an integer, got %q", record[3])
			continue
		}
		if stock < 0 {
			fail(line, "stock cannot be negative, got %d", stock)
			continue
		}
		row.Stock = stock

		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

// resolveSlugs maps every distinct slug to a product owned by the
// requesting curator. Unknown slugs and slugs owned by someone else are
// reported together as not-found, and nothing is written.
func resolveSlugs(db *gorm.DB, curatorID string, rows []importRow) (map[string]*models.Product, error) {
	distinct := make(map[string]bool)
	for _, row := range rows {
		distinct[row.Slug] = true
	}
	slugs := make([]string, 0, len(distinct))
	for slug := range distinct {
		slugs = append(slugs, slug)
	}

	var products []models.Product
	if err := db.Where("slug IN ? AND curator_id = ?", slugs, curatorID).
		Find(&products).Error; err != nil {
		return nil, err
	}

	bySlug := make(map[string]*models.Product, len(products))
	for i := range products {
		bySlug[products[i].Slug] = &products[i]
	}

	var missing []string
	for _, slug := range slugs {
		if _, ok := bySlug[slug]; !ok {
			missing = append(missing, slug)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NotFoundf("unknown or unauthorized product slugs: %s", strings.Join(missing, ", "))
	}
	return bySlug, nil
}

// ImportVariantsHandler accepts the CSV upload from a curator.
func ImportVariantsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
			return
		}
		defer file.Close()

		summary, rowErrors, err := ImportVariants(db, curatorID, file)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		if len(rowErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "import rejected, no rows were written",
				"row_errors": rowErrors,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": summary.Created,
			"updated_count": summary.Updated,
		})
	}
}
