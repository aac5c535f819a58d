package cartControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
	))
	return db
}

func cartRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/cart", GetUserCart(db))
	r.POST("/cart/items", AddCartItem(db))
	r.PUT("/cart/items/:itemID", UpdateCartItem(db))
	r.DELETE("/cart/items/:itemID", DeleteCartItem(db))
	r.DELETE("/cart", ClearUserCart(db))
	return r
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		CuratorID: "curator-1",
		Title:     "Wool Scarf",
		Slug:      "wool-scarf-" + uuid.NewString()[:8],
		Price:     decimal.NewFromFloat(35.00),
		Stock:     stock,
		Active:    true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cartLines(t *testing.T, db *gorm.DB, userID string) []models.CartItem {
	t.Helper()
	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error)
	return cart.Items
}

func TestAddCartItemIncrementsSameCombination(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)
	r := cartRouter(db, "buyer-1")

	w := postJSON(r, "/cart/items", CartItemInput{
		ProductID: product.ID, Quantity: 2, Size: "M", Color: "Red",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same (product, size, color): one line, summed quantity.
	w = postJSON(r, "/cart/items", CartItemInput{
		ProductID: product.ID, Quantity: 3, Size: "M", Color: "Red",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	lines := cartLines(t, db, "buyer-1")
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	// Different color is a new line.
	w = postJSON(r, "/cart/items", CartItemInput{
		ProductID: product.ID, Quantity: 1, Size: "M", Color: "Blue",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, cartLines(t, db, "buyer-1"), 2)
}

func TestAddCartItemWarnsButNeverBlocks(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 1)
	r := cartRouter(db, "buyer-1")

	// Requesting more than available still succeeds; the cart is
	// advisory and checkout is the authority.
	w := postJSON(r, "/cart/items", CartItemInput{ProductID: product.ID, Quantity: 5})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Warning)
}

func TestAddCartItemRejectsInactiveProduct(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 5)
	require.NoError(t, db.Model(product).Update("active", false).Error)
	r := cartRouter(db, "buyer-1")

	w := postJSON(r, "/cart/items", CartItemInput{ProductID: product.ID, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAndClearCart(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)
	r := cartRouter(db, "buyer-1")

	postJSON(r, "/cart/items", CartItemInput{ProductID: product.ID, Quantity: 1, Size: "S", Color: "Red"})
	postJSON(r, "/cart/items", CartItemInput{ProductID: product.ID, Quantity: 1, Size: "M", Color: "Red"})

	lines := cartLines(t, db, "buyer-1")
	require.Len(t, lines, 2)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/items/%d", lines[0].ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, cartLines(t, db, "buyer-1"), 1)

	req = httptest.NewRequest(http.MethodDelete, "/cart", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartLines(t, db, "buyer-1"))
}
