package orders

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
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'placed',
  currency TEXT NOT NULL DEFAULT 'BRL',
  delivery_option_id TEXT NOT NULL,
  delivery_label TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  coupon_code TEXT,
  subtotal_cents INTEGER NOT NULL,
  delivery_fee_cents INTEGER NOT NULL,
  service_fee_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  delivery_code TEXT NOT NULL,
  placed_at DATETIME NOT NULL,
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  line_subtotal_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(lineItems).Error)
	require.NoError(t, db.Exec(outboxEvents).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_line_items`).Error)
	require.NoError(t, db.Exec(`DELETE FROM outbox_events`).Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newOrdersTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	outboxSvc := outbox.NewService(outbox.NewRepository(db), nil)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, outboxSvc, nil)
	require.NoError(t, err)
	return svc
}

func placeTestOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "IF-20260310-0001",
		CustomerID:       uuid.New(),
		StoreID:          uuid.New(),
		Status:           status,
		Currency:         enums.CurrencyBRL,
		DeliveryOptionID: "standard",
		DeliveryLabel:    "Entrega padrão",
		DeliveryAddress: types.Address{
			Street: "Rua das Laranjeiras", Number: "52", District: "Centro",
			City: "São Paulo", State: "SP", PostalCode: "01000-000", Country: "BR",
		},
		PaymentMethod:    enums.PaymentMethodPix,
		SubtotalCents:    1930,
		DeliveryFeeCents: 1999,
		ServiceFeeCents:  99,
		TotalCents:       4028,
		DeliveryCode:     "4921",
		PlacedAt:         time.Now(),
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&models.OrderLineItem{
		ID:                uuid.New(),
		OrderID:           order.ID,
		ProductID:         uuid.New(),
		Name:              "Banana prata kg",
		UnitPriceCents:    590,
		Quantity:          2,
		LineSubtotalCents: 1180,
	}).Error)
	return order
}

func countOutboxEvents(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}

func TestAdvance_FullLifecycle(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusPlaced)
	ctx := context.Background()

	updated, err := svc.Advance(ctx, order.ID, enums.OrderEventConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, updated.Status)

	updated, err = svc.Advance(ctx, order.ID, enums.OrderEventCourierAssigned)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusOnTheWay, updated.Status)

	assert.Equal(t, int64(2), countOutboxEvents(t, db, enums.EventOrderAdvanced))
}

func TestAdvance_RejectsSkippedStage(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusPlaced)

	// placed → on_the_way directly is not a legal move
	_, err := svc.Advance(context.Background(), order.ID, enums.OrderEventCourierAssigned)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAdvance_RejectsTerminalOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusDelivered)

	_, err := svc.Advance(context.Background(), order.ID, enums.OrderEventConfirmed)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestConfirmDelivery_RequiresMatchingCode(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusOnTheWay)
	ctx := context.Background()

	_, err := svc.ConfirmDelivery(ctx, order.CustomerID, order.ID, "0000")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	updated, err := svc.ConfirmDelivery(ctx, order.CustomerID, order.ID, "4921")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.Equal(t, int64(1), countOutboxEvents(t, db, enums.EventOrderDelivered))
}

func TestConfirmDelivery_OnlyFromOnTheWay(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusPreparing)

	_, err := svc.ConfirmDelivery(context.Background(), order.CustomerID, order.ID, "4921")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestCancel_AllowedFromPlacedAndPreparing(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	placed := placeTestOrder(t, db, enums.OrderStatusPlaced)
	updated, err := svc.Cancel(ctx, placed.CustomerID, placed.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, updated.Status)
	require.NotNil(t, updated.CanceledAt)

	preparing := placeTestOrder(t, db, enums.OrderStatusPreparing)
	_, err = svc.Cancel(ctx, preparing.CustomerID, preparing.ID, "")
	require.NoError(t, err)

	assert.Equal(t, int64(2), countOutboxEvents(t, db, enums.EventOrderCanceled))
}

func TestCancel_RejectedOnceOnTheWay(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusOnTheWay)

	_, err := svc.Cancel(context.Background(), order.CustomerID, order.ID, "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	order := placeTestOrder(t, db, enums.OrderStatusPlaced)
	ctx := context.Background()

	loaded, err := svc.GetOrder(ctx, order.CustomerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, loaded.OrderNumber)
	require.Len(t, loaded.Items, 1)

	_, err = svc.GetOrder(ctx, uuid.New(), order.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestNewOrderView_HidesCodeOnceTerminal(t *testing.T) {
	db := setupOrdersTestDB(t)
	order := placeTestOrder(t, db, enums.OrderStatusOnTheWay)

	view := NewOrderView(order)
	assert.Equal(t, "4921", view.DeliveryCode)
	assert.Equal(t, "40.28", view.Quote.Total)

	order.Status = enums.OrderStatusDelivered
	view = NewOrderView(order)
	assert.Empty(t, view.DeliveryCode)
}
