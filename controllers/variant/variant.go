package variantcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qatumarket/marketplace-api/apperrors"
	"github.com/qatumarket/marketplace-api/config"
	"github.com/qatumarket/marketplace-api/models"
)

// Availability answers "can N units of this combination be reserved".
type Availability struct {
	Available     bool  `json:"available"`
	StockQuantity int   `json:"stock_quantity"`
	VariantID     *uint `json:"variant_id"`
}

// CheckAvailability resolves the (product, size, color) tuple against
// persisted stock. A product with no variant row for the tuple can never
// be purchased by variant-specific selection. The result is advisory at
// cart time; checkout re-runs this inside its transaction.
func CheckAvailability(db *gorm.DB, productID uint, size, color string, requestedQty int) (Availability, error) {
	var variant models.ProductVariant
	err := db.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Availability{Available: false, StockQuantity: 0, VariantID: nil}, nil
	}
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Available:     variant.Stock >= requestedQty,
		StockQuantity: variant.Stock,
		VariantID:     &variant.ID,
	}, nil
}

// UpsertVariant creates or updates the row keyed by (product, size,
// color). Calling it twice with the same tuple updates the first row,
// never duplicates. Returns whether a row was created.
func UpsertVariant(db *gorm.DB, productID uint, size, color string, stock int, sku string) (bool, error) {
	if stock < 0 {
		return false, apperrors.Validationf("stock cannot be negative")
	}

	var variant models.ProductVariant
	err := db.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		variant = models.ProductVariant{
			ProductID: productID,
			Size:      size,
			Color:     color,
			Stock:     stock,
			SKU:       sku,
		}
		if err := insertVariant(db, &variant); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	variant.Stock = stock
	if sku != "" {
		variant.SKU = sku
	}
	return false, db.Save(&variant).Error
}

// insertVariant creates the row for a combination the caller believes
// is new. If another writer created the same combination between the
// caller's lookup and this insert, the conflict becomes the equivalent
// stock/SKU update instead of a unique-index error.
func insertVariant(db *gorm.DB, variant *models.ProductVariant) error {
	assignments := map[string]interface{}{"stock": variant.Stock}
	if variant.SKU != "" {
		assignments["sku"] = variant.SKU
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "size"}, {Name: "color"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(variant).Error
}

// InitializeProductVariants creates the full size × color cross-product,
// splitting totalStock evenly with the integer remainder assigned to the
// first combination (total 10 over 4 combos → [4,2,2,2]).
func InitializeProductVariants(db *gorm.DB, productID uint, sizes, colors []string, totalStock int) error {
	combos := crossProduct(sizes, colors)
	if len(combos) == 0 {
		return nil
	}

	perVariant := totalStock / len(combos)
	remainder := totalStock % len(combos)

	return db.Transaction(func(tx *gorm.DB) error {
		for i, combo := range combos {
			stock := perVariant
			if i == 0 {
				stock += remainder
			}
			variant := models.ProductVariant{
				ProductID: productID,
				Size:      combo[0],
				Color:     combo[1],
				Stock:     stock,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SyncProductVariants reconciles an existing variant set with new size
// and color lists: combinations no longer present are deleted, new ones
// created, and surviving rows keep their stock untouched. New rows share
// totalStock evenly among themselves (remainder to the first new combo).
func SyncProductVariants(db *gorm.DB, productID uint, sizes, colors []string, totalStock int) error {
	desired := crossProduct(sizes, colors)

	return db.Transaction(func(tx *gorm.DB) error {
		var existing []models.ProductVariant
		if err := tx.Where("product_id = ?", productID).Find(&existing).Error; err != nil {
			return err
		}

		current := make(map[string]models.ProductVariant, len(existing))
		for _, v := range existing {
			current[comboKey(v.Size, v.Color)] = v
		}

		wanted := make(map[string]bool, len(desired))
		var newCombos [][2]string
		for _, combo := range desired {
			key := comboKey(combo[0], combo[1])
			wanted[key] = true
			if _, ok := current[key]; !ok {
				newCombos = append(newCombos, combo)
			}
		}

		for key, v := range current {
			if !wanted[key] {
				if err := tx.Delete(&models.ProductVariant{}, v.ID).Error; err != nil {
					return err
				}
			}
		}

		if len(newCombos) == 0 {
			return nil
		}
		perVariant := totalStock / len(newCombos)
		remainder := totalStock % len(newCombos)
		for i, combo := range newCombos {
			stock := perVariant
			if i == 0 {
				stock += remainder
			}
			variant := models.ProductVariant{
				ProductID: productID,
				Size:      combo[0],
				Color:     combo[1],
				Stock:     stock,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DecrementVariantStock applies a guarded decrement-by-delta. A zero
// RowsAffected means another transaction drained the stock first; the
// caller's transaction must roll back.
func DecrementVariantStock(tx *gorm.DB, variantID uint, qty int) error {
	res := tx.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflictf("insufficient variant stock")
	}
	return nil
}

// RestockVariant returns previously decremented units.
func RestockVariant(tx *gorm.DB, variantID uint, qty int) error {
	return tx.Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func crossProduct(sizes, colors []string) [][2]string {
	var combos [][2]string
	for _, size := range sizes {
		for _, color := range colors {
			combos = append(combos, [2]string{size, color})
		}
	}
	return combos
}

func comboKey(size, color string) string { return size + "\x00" + color }

// -------- Handlers --------

const availabilityCacheTTL = 30 * time.Second

// CheckAvailabilityHandler serves the advisory availability query used
// by the cart UI. Results may be briefly cached; checkout never reads
// this cache.
func CheckAvailabilityHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		size := c.Query("size")
		color := c.Query("color")
		qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
		if err != nil || qty < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}

		if config.RedisClient != nil {
			key := fmt.Sprintf("avail:%d:%s:%s", productID, size, color)
			if cached, err := config.RedisClient.Get(c.Request.Context(), key).Int(); err == nil {
				var id *uint
				c.JSON(http.StatusOK, Availability{
					Available:     cached >= qty,
					StockQuantity: cached,
					VariantID:     id,
				})
				return
			}
		}

		availability, err := CheckAvailability(db, uint(productID), size, color, qty)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
			return
		}

		if config.RedisClient != nil && availability.VariantID != nil {
			key := fmt.Sprintf("avail:%d:%s:%s", productID, size, color)
			config.RedisClient.Set(c.Request.Context(), key, availability.StockQuantity, availabilityCacheTTL)
		}

		c.JSON(http.StatusOK, availability)
	}
}

// GetProductVariants lists a product's variants.
func GetProductVariants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("id")
		var variants []models.ProductVariant
		if err := db.Where("product_id = ?", productID).
			Order("size, color").Find(&variants).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
			return
		}
		c.JSON(http.StatusOK, variants)
	}
}

type UpdateVariantInput struct {
	Stock *int   `json:"stock" binding:"required"`
	SKU   string `json:"sku"`
}

// UpdateVariantStock lets the owning curator set a variant's stock/SKU.
func UpdateVariantStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		var input UpdateVariantInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if *input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
			return
		}

		variant, err := ownedVariant(db, c.Param("variantID"), curatorID)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		variant.Stock = *input.Stock
		if input.SKU != "" {
			variant.SKU = input.SKU
		}
		if err := db.Save(variant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update variant"})
			return
		}
		c.JSON(http.StatusOK, variant)
	}
}

// DeleteVariant removes one variant row.
func DeleteVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		variant, err := ownedVariant(db, c.Param("variantID"), curatorID)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		if err := db.Delete(variant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete variant"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Variant deleted"})
	}
}

// ownedVariant resolves a variant and hides it when the requesting
// curator does not own the parent product.
func ownedVariant(db *gorm.DB, variantID, curatorID string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := db.First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("variant not found")
		}
		return nil, err
	}
	var product models.Product
	if err := db.First(&product, variant.ProductID).Error; err != nil {
		return nil, apperrors.NotFoundf("variant not found")
	}
	if product.CuratorID != curatorID {
		return nil, apperrors.NotFoundf("variant not found")
	}
	return &variant, nil
}
