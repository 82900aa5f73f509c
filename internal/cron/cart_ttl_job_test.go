package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
)

func setupCronTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS carts (
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
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
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
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
		`DELETE FROM carts`,
		`DELETE FROM cart_items`,
		`DELETE FROM outbox_events`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type cronTxRunner struct {
	db *gorm.DB
}

func (r cronTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func seedCartWithValidity(t *testing.T, repo cart.CartRepository, validUntil time.Time) *models.CartRecord {
	t.Helper()

	record, err := repo.Create(context.Background(), &models.CartRecord{
		CustomerID: uuid.New(),
		Currency:   enums.CurrencyBRL,
		ValidUntil: validUntil,
	})
	require.NoError(t, err)
	item := &models.CartItem{
		ID:                uuid.New(),
		CartID:            record.ID,
		ProductID:         uuid.New(),
		StoreID:           uuid.New(),
		Name:              "Banana prata kg",
		UnitPriceCents:    790,
		Quantity:          1,
		LineSubtotalCents: 790,
	}
	require.NoError(t, repo.UpsertItem(context.Background(), item))
	return record
}

func TestCartTTLJob_ExpiresStaleCartsAndEmitsEvents(t *testing.T) {
	db := setupCronTestDB(t)
	repo := cart.NewRepository(db)
	now := time.Now().UTC()

	stale := seedCartWithValidity(t, repo, now.Add(-time.Hour))
	fresh := seedCartWithValidity(t, repo, now.Add(time.Hour))

	job, err := NewCartTTLJob(CartTTLJobParams{
		Logger: testLogger(),
		DB:     cronTxRunner{db: db},
		Carts:  repo,
		Outbox: outbox.NewService(outbox.NewRepository(db), nil),
	})
	require.NoError(t, err)
	require.Equal(t, "cart-ttl", job.Name())

	require.NoError(t, job.Run(context.Background()))

	expired, err := repo.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusExpired, expired.Status)

	untouched, err := repo.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, untouched.Status)

	var eventCount int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventCartExpired, stale.ID).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestCartTTLJob_NoStaleCartsIsANoop(t *testing.T) {
	db := setupCronTestDB(t)
	repo := cart.NewRepository(db)
	seedCartWithValidity(t, repo, time.Now().UTC().Add(time.Hour))

	job, err := NewCartTTLJob(CartTTLJobParams{
		Logger: testLogger(),
		DB:     cronTxRunner{db: db},
		Carts:  repo,
		Outbox: outbox.NewService(outbox.NewRepository(db), nil),
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var eventCount int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	assert.Equal(t, int64(0), eventCount)
}
