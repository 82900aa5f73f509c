package catalog

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
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  weight_grams INTEGER,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	deliveryOptions := `
CREATE TABLE IF NOT EXISTS delivery_options (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL,
  eta_minutes_min INTEGER NOT NULL,
  eta_minutes_max INTEGER NOT NULL,
  fee_cents INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(stores).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(deliveryOptions).Error)
	require.NoError(t, db.Exec(`DELETE FROM stores`).Error)
	require.NoError(t, db.Exec(`DELETE FROM products`).Error)
	require.NoError(t, db.Exec(`DELETE FROM delivery_options`).Error)
	return db
}

func newCatalogStore(t *testing.T, db *gorm.DB, name string, created time.Time) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:        uuid.New(),
		Name:      name,
		Active:    true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func newCatalogProduct(t *testing.T, db *gorm.DB, storeID uuid.UUID, name string, priceCents int64, active bool, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		StoreID:    storeID,
		Name:       name,
		PriceCents: priceCents,
		Active:     active,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryListProductsByStore_FiltersInactiveAndPaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newCatalogStore(t, db, "Hortifruti Central", base)
	other := newCatalogStore(t, db, "Mercearia do Zé", base)

	for i := 0; i < 3; i++ {
		newCatalogProduct(t, db, store.ID, "Fruta", 500, true, base.Add(time.Duration(i)*time.Minute))
	}
	newCatalogProduct(t, db, store.ID, "Fora de linha", 900, false, base.Add(time.Hour))
	newCatalogProduct(t, db, other.ID, "Arroz", 2500, true, base)

	rows, err := repo.ListProductsByStore(ctx, store.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// buffer row included so the service can detect the next page
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, store.ID, row.StoreID)
		assert.True(t, row.Active)
	}
}

func TestRepositoryFindDeliveryOption_OnlyActive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.Create(&models.DeliveryOption{
		ID: "standard", Label: "Entrega padrão", EtaMinutesMin: 40, EtaMinutesMax: 60,
		FeeCents: 690, Active: true, CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.DeliveryOption{
		ID: "drone", Label: "Drone", EtaMinutesMin: 5, EtaMinutesMax: 10,
		FeeCents: 4999, Active: false, CreatedAt: now, UpdatedAt: now,
	}).Error)

	option, err := repo.FindDeliveryOption(ctx, "standard")
	require.NoError(t, err)
	assert.Equal(t, int64(690), option.FeeCents)

	_, err = repo.FindDeliveryOption(ctx, "drone")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestServiceListProductsByStore_PageCursor(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newCatalogStore(t, db, "Hortifruti Central", base)
	for i := 0; i < 5; i++ {
		newCatalogProduct(t, db, store.ID, "Item", 500, true, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.ListProductsByStore(ctx, store.ID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Products, 3)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.ListProductsByStore(ctx, store.ID, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Products, 2)
	assert.False(t, next.HasMore)
	assert.Empty(t, next.NextCursor)
}
