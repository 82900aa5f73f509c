package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  store_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  currency TEXT NOT NULL DEFAULT 'BRL',
  delivery_option_id TEXT,
  delivery_address TEXT,
  payment_method TEXT,
  coupon_code TEXT,
  valid_until DATETIME NOT NULL,
  converted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  line_subtotal_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(`DELETE FROM carts`).Error)
	require.NoError(t, db.Exec(`DELETE FROM cart_items`).Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type mapProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (l mapProductLoader) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := l.products[id]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func newCartTestService(t *testing.T, db *gorm.DB, products ...*models.Product) Service {
	t.Helper()

	loader := mapProductLoader{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		loader.products[product.ID] = product
	}
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, loader, 72*time.Hour)
	require.NoError(t, err)
	return svc
}

func testProduct(storeID uuid.UUID, name string, priceCents int64) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		StoreID:    storeID,
		Name:       name,
		PriceCents: priceCents,
		Active:     true,
	}
}

func TestServiceAddItem_SnapshotsProduct(t *testing.T) {
	db := setupCartTestDB(t)
	storeID := uuid.New()
	banana := testProduct(storeID, "Banana prata kg", 790)
	svc := newCartTestService(t, db, banana)

	customerID := uuid.New()
	record, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: banana.ID})
	require.NoError(t, err)

	require.NotNil(t, record.StoreID)
	assert.Equal(t, storeID, *record.StoreID)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "Banana prata kg", record.Items[0].Name)
	assert.Equal(t, int64(790), record.Items[0].UnitPriceCents)
	assert.Equal(t, 1, record.Items[0].Quantity)
	assert.Equal(t, int64(790), record.SubtotalCents())
}

func TestServiceAddItem_SameProductIncrements(t *testing.T) {
	db := setupCartTestDB(t)
	storeID := uuid.New()
	banana := testProduct(storeID, "Banana prata kg", 790)
	svc := newCartTestService(t, db, banana)

	customerID := uuid.New()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID, Quantity: 2})
	require.NoError(t, err)
	record, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID})
	require.NoError(t, err)

	require.Len(t, record.Items, 1)
	assert.Equal(t, 3, record.Items[0].Quantity)
	assert.Equal(t, int64(3*790), record.Items[0].LineSubtotalCents)
}

func TestServiceAddItem_RejectsSecondStore(t *testing.T) {
	db := setupCartTestDB(t)
	banana := testProduct(uuid.New(), "Banana prata kg", 790)
	arroz := testProduct(uuid.New(), "Arroz 5kg", 2490)
	svc := newCartTestService(t, db, banana, arroz)

	customerID := uuid.New()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, customerID, AddItemInput{ProductID: arroz.ID})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestServiceDecreaseItem_RemovesLineAtQuantityOne(t *testing.T) {
	db := setupCartTestDB(t)
	storeID := uuid.New()
	banana := testProduct(storeID, "Banana prata kg", 790)
	svc := newCartTestService(t, db, banana)

	customerID := uuid.New()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID, Quantity: 2})
	require.NoError(t, err)

	record, err := svc.DecreaseItem(ctx, customerID, banana.ID)
	require.NoError(t, err)
	require.Len(t, record.Items, 1)
	assert.Equal(t, 1, record.Items[0].Quantity)

	record, err = svc.DecreaseItem(ctx, customerID, banana.ID)
	require.NoError(t, err)
	assert.Empty(t, record.Items)
	// emptied cart unbinds from the store
	assert.Nil(t, record.StoreID)
	assert.Equal(t, int64(0), record.SubtotalCents())
}

func TestServiceRemoveItem_UnknownProduct(t *testing.T) {
	db := setupCartTestDB(t)
	banana := testProduct(uuid.New(), "Banana prata kg", 790)
	svc := newCartTestService(t, db, banana)

	customerID := uuid.New()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, customerID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceClear_ResetsStoreBindingAndCoupon(t *testing.T) {
	db := setupCartTestDB(t)
	banana := testProduct(uuid.New(), "Banana prata kg", 790)
	arroz := testProduct(uuid.New(), "Arroz 5kg", 2490)
	svc := newCartTestService(t, db, banana, arroz)

	customerID := uuid.New()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, customerID, AddItemInput{ProductID: banana.ID})
	require.NoError(t, err)

	record, err := svc.Clear(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, record.Items)
	assert.Nil(t, record.StoreID)
	assert.Nil(t, record.CouponCode)

	// a different store's product is accepted after clearing
	record, err = svc.AddItem(ctx, customerID, AddItemInput{ProductID: arroz.ID})
	require.NoError(t, err)
	require.Len(t, record.Items, 1)
	assert.Equal(t, arroz.ID, record.Items[0].ProductID)
}

func TestServiceGetActiveCart_CreatesEmptyCartOnFirstAccess(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartTestService(t, db)

	customerID := uuid.New()
	record, err := svc.GetActiveCart(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, customerID, record.CustomerID)
	assert.Equal(t, enums.CartStatusActive, record.Status)
	assert.Empty(t, record.Items)
	assert.True(t, record.ValidUntil.After(time.Now()))
}
