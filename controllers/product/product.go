package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/apperrors"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
	"github.com/qatumarket/marketplace-api/models"
)

type CreateProductInput struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock"`
	Sizes       string `json:"sizes"`  // comma-separated, e.g. "S,M,L"
	Colors      string `json:"colors"` // comma-separated, e.g. "Red,Blue"
}

// CreateProduct registers a product for the authenticated curator. When
// both size and color lists are given, the variant cross-product is
// initialized with the stock split evenly across combinations.
//
// POST /curator/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		var input CreateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		price, err := decimal.NewFromString(input.Price)
		if err != nil || !price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive decimal"})
			return
		}
		if input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock cannot be negative"})
			return
		}

		product := models.Product{
			CuratorID:   curatorID,
			Title:       input.Title,
			Slug:        strings.ToLower(strings.TrimSpace(input.Slug)),
			Description: input.Description,
			Price:       price,
			Stock:       input.Stock,
			Active:      true,
			Sizes:       input.Sizes,
			Colors:      input.Colors,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			sizes, colors := product.SizeList(), product.ColorList()
			if len(sizes) > 0 && len(colors) > 0 {
				return variantcontroller.InitializeProductVariants(tx, product.ID, sizes, colors, product.Stock)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		if err := db.Preload("Variants").First(&product, product.ID).Error; err == nil {
			c.JSON(http.StatusCreated, product)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

type UpdateProductInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *int    `json:"stock"`
	Active      *bool   `json:"active"`
	Sizes       *string `json:"sizes"`
	Colors      *string `json:"colors"`
}

// UpdateProduct edits a curator's product. A changed size or color list
// is reconciled against the existing variants: removed combinations are
// dropped, new ones created, unchanged ones keep their stock.
//
// PUT /curator/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		product, err := ownedProduct(db, c.Param("id"), curatorID)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.Title != nil {
			product.Title = *input.Title
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			price, err := decimal.NewFromString(*input.Price)
			if err != nil || !price.IsPositive() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive decimal"})
				return
			}
			product.Price = price
		}
		if input.Stock != nil {
			if *input.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock cannot be negative"})
				return
			}
			product.Stock = *input.Stock
		}
		if input.Active != nil {
			product.Active = *input.Active
		}

		listsChanged := false
		if input.Sizes != nil && *input.Sizes != product.Sizes {
			product.Sizes = *input.Sizes
			listsChanged = true
		}
		if input.Colors != nil && *input.Colors != product.Colors {
			product.Colors = *input.Colors
			listsChanged = true
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(product).Error; err != nil {
				return err
			}
			if listsChanged {
				return variantcontroller.SyncProductVariants(
					tx, product.ID, product.SizeList(), product.ColorList(), product.Stock)
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		if err := db.Preload("Variants").First(product, product.ID).Error; err == nil {
			c.JSON(http.StatusOK, product)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DeactivateProduct takes a product off sale without deleting it.
//
// DELETE /curator/products/:id
func DeactivateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		product, err := ownedProduct(db, c.Param("id"), curatorID)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(product).Update("active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
	}
}

// GetAllProducts lists active products, newest first.
//
// GET /products
func GetAllProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("active = ?", true).
			Order("created_at DESC").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProduct fetches one product with its variants.
//
// GET /products/:id
func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Preload("Variants").
			First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		if len(product.Variants) > 0 {
			// The per-variant rows are the unit of truth when they exist.
			total, err := product.VariantStockTotal(db)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{"product": product, "variant_stock_total": total})
				return
			}
		}
		c.JSON(http.StatusOK, product)
	}
}

// GetCuratorProducts lists the authenticated curator's own products,
// inactive ones included.
//
// GET /curator/products
func GetCuratorProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		var products []models.Product
		if err := db.Preload("Variants").
			Where("curator_id = ?", curatorID).
			Order("created_at DESC").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func ownedProduct(db *gorm.DB, productID, curatorID string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product not found")
		}
		return nil, err
	}
	if product.CuratorID != curatorID {
		return nil, apperrors.NotFoundf("product not found")
	}
	return &product, nil
}
