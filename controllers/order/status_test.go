package orderControllers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/apperrors"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
	"github.com/qatumarket/marketplace-api/models"
)

// placeVariantOrder puts one pending_verification order for 2 units of
// the M/Red variant (variant stock 5, product stock 10) into the DB.
func placeVariantOrder(t *testing.T, db *gorm.DB) (*models.Product, *models.Order) {
	t.Helper()
	createUser(t, db, "buyer-1", models.RoleBuyer)
	createUser(t, db, "curator-a", models.RoleCurator)
	product := createProduct(t, db, "curator-a", 80.00, 10)
	_, err := variantcontroller.UpsertVariant(db, product.ID, "M", "Red", 5, "")
	require.NoError(t, err)

	orders, err := PlaceOrder(db, "buyer-1", CheckoutRequest{
		Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 2, Size: "M", Color: "Red"}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "yape",
		TransactionCode: "YAPE-777",
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return product, &orders[0]
}

func variantStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var variant models.ProductVariant
	require.NoError(t, db.Where("product_id = ? AND size = ? AND color = ?",
		productID, "M", "Red").First(&variant).Error)
	return variant.Stock
}

func orderIDStr(order *models.Order) string { return fmt.Sprint(order.ID) }

func TestApproveDecrementsVariantStockOnce(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)

	// Checkout took the aggregate counter but not the variant.
	assert.Equal(t, 8, productStock(t, db, product.ID))
	assert.Equal(t, 5, variantStock(t, db, product.ID))

	updated, applied, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.OrderStatusPaid, updated.Status)
	assert.Equal(t, 3, variantStock(t, db, product.ID))

	// Approving again is a success no-op: same end state, no second
	// decrement.
	updated, applied, err = TransitionOrder(db, orderIDStr(order), models.OrderStatusPaid)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.OrderStatusPaid, updated.Status)
	assert.Equal(t, 3, variantStock(t, db, product.ID))
}

func TestRejectAfterApproveConflicts(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)

	_, _, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusPaid)
	require.NoError(t, err)

	_, _, err = TransitionOrder(db, orderIDStr(order), models.OrderStatusRejected)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// Status and stock unchanged by the refused action.
	var current models.Order
	require.NoError(t, db.First(&current, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, current.Status)
	assert.Equal(t, 3, variantStock(t, db, product.ID))
}

func TestApproveFailsWhenVariantDrained(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)

	// Someone else drained the variant between checkout and approval.
	require.NoError(t, db.Model(&models.ProductVariant{}).
		Where("product_id = ?", product.ID).
		Update("stock", 1).Error)

	_, _, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusPaid)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// Approval rolled back in full.
	var current models.Order
	require.NoError(t, db.First(&current, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingVerification, current.Status)
	assert.Equal(t, 1, variantStock(t, db, product.ID))
}

func TestCancelBeforePaymentRestoresAggregateStock(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)
	assert.Equal(t, 8, productStock(t, db, product.ID))

	_, applied, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, 10, productStock(t, db, product.ID))
	// Variant stock was never taken, so it is not touched.
	assert.Equal(t, 5, variantStock(t, db, product.ID))
}

func TestCancelAfterPaymentRestoresVariantStock(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)

	_, _, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, 3, variantStock(t, db, product.ID))

	_, _, err = TransitionOrder(db, orderIDStr(order), models.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, 10, productStock(t, db, product.ID))
	assert.Equal(t, 5, variantStock(t, db, product.ID))
}

func TestShippedOrdersCannotBeCancelled(t *testing.T) {
	db := setupTestDB(t)
	_, order := placeVariantOrder(t, db)

	for _, status := range []models.OrderStatus{
		models.OrderStatusPaid,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
	} {
		_, _, err := TransitionOrder(db, orderIDStr(order), status)
		require.NoError(t, err)
	}

	_, _, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusCancelled)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRefundRequiresPayment(t *testing.T) {
	db := setupTestDB(t)
	_, order := placeVariantOrder(t, db)

	_, _, err := TransitionOrder(db, orderIDStr(order), models.OrderStatusRefunded)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestClaimTransitionRequiresPriorStatus(t *testing.T) {
	db := setupTestDB(t)
	product, order := placeVariantOrder(t, db)

	// A claim naming a stale prior status matches zero rows and must
	// conflict: this is what stops two interleaved approvals from both
	// applying the paid side effects.
	err := claimTransition(db, order.ID, models.OrderStatusPending, models.OrderStatusPaid)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var current models.Order
	require.NoError(t, db.First(&current, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingVerification, current.Status)
	assert.Equal(t, 5, variantStock(t, db, product.ID))

	// The same claim with the real prior status goes through exactly
	// once; repeating it sees the already-moved row and conflicts.
	require.NoError(t, claimTransition(db, order.ID,
		models.OrderStatusPendingVerification, models.OrderStatusPaid))
	err = claimTransition(db, order.ID,
		models.OrderStatusPendingVerification, models.OrderStatusPaid)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestTransitionUnknownOrder(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := TransitionOrder(db, "12345", models.OrderStatusPaid)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
