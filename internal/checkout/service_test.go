package checkout

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	"github.com/Dansouza2211/app-ifruits-sub000/internal/coupons"
	"github.com/Dansouza2211/app-ifruits-sub000/internal/orders"
	"github.com/Dansouza2211/app-ifruits-sub000/internal/pricing"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS orders (
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
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
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
		`DELETE FROM orders`,
		`DELETE FROM order_line_items`,
		`DELETE FROM outbox_events`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type mapOptionLoader struct {
	options map[string]*models.DeliveryOption
}

func (l mapOptionLoader) GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error) {
	if option, ok := l.options[id]; ok {
		return option, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery option not found")
}

type mapCouponValidator struct {
	coupons map[string]*models.Coupon
}

func (v mapCouponValidator) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := v.coupons[coupons.Canonicalize(code)]; ok {
		return coupon, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
}

type fixedCardCounter struct {
	count int64
}

func (c fixedCardCounter) CountCards(ctx context.Context, customerID uuid.UUID) (int64, error) {
	return c.count, nil
}

type sequenceNumberSource struct {
	seq int
}

func (s *sequenceNumberSource) Next(ctx context.Context) (string, error) {
	s.seq++
	return fmt.Sprintf("IF-20260315-%04d", s.seq), nil
}

type checkoutFixture struct {
	svc      Service
	carts    cart.CartRepository
	orders   orders.Repository
	cards    *fixedCardCounter
	db       *gorm.DB
	standard *models.DeliveryOption
	fast     *models.DeliveryOption
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	standard := &models.DeliveryOption{ID: "standard", Label: "Entrega padrão", EtaMinutesMin: 40, EtaMinutesMax: 60, FeeCents: 690, Active: true}
	fast := &models.DeliveryOption{ID: "fast", Label: "Entrega rápida", EtaMinutesMin: 15, EtaMinutesMax: 25, FeeCents: 1999, Active: true}

	calc, err := pricing.NewCalculator(99)
	require.NoError(t, err)

	cards := &fixedCardCounter{count: 0}
	fixture := &checkoutFixture{
		carts:    cart.NewRepository(db),
		orders:   orders.NewRepository(db),
		cards:    cards,
		db:       db,
		standard: standard,
		fast:     fast,
	}
	svc, err := NewService(ServiceParams{
		CartRepo:   fixture.carts,
		OrdersRepo: fixture.orders,
		DeliveryOptions: mapOptionLoader{options: map[string]*models.DeliveryOption{
			standard.ID: standard,
			fast.ID:     fast,
		}},
		Coupons: mapCouponValidator{coupons: map[string]*models.Coupon{
			"IFRUITS10": {ID: uuid.New(), Code: "IFRUITS10", Kind: enums.CouponKindPercentageOff, ValueBps: 1000, Active: true},
			"FRETE":     {ID: uuid.New(), Code: "FRETE", Kind: enums.CouponKindFreeDelivery, Active: true},
		}},
		Cards:             cards,
		Calculator:        calc,
		OrderNumbers:      &sequenceNumberSource{},
		TransactionRunner: gormTxRunner{db: db},
		Outbox:            outbox.NewService(outbox.NewRepository(db), nil),
	})
	require.NoError(t, err)
	fixture.svc = svc
	return fixture
}

func testAddress() types.Address {
	return types.Address{
		Label:      "Casa",
		Street:     "Rua das Laranjeiras",
		Number:     "120",
		District:   "Centro",
		City:       "Recife",
		State:      "PE",
		PostalCode: "50000-000",
		Country:    "BR",
	}
}

// seedCart writes an active cart with the given lines straight through the
// repository, the way the cart service would have left it.
func (f *checkoutFixture) seedCart(t *testing.T, customerID uuid.UUID, lines ...models.CartItem) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{
		CustomerID: customerID,
		Currency:   enums.CurrencyBRL,
		ValidUntil: time.Now().Add(72 * time.Hour),
	}
	created, err := f.carts.Create(context.Background(), record)
	require.NoError(t, err)

	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].CartID = created.ID
		require.NoError(t, f.carts.UpsertItem(context.Background(), &lines[i]))
	}
	if len(lines) > 0 {
		created.StoreID = &lines[0].StoreID
		_, err = f.carts.Update(context.Background(), created)
		require.NoError(t, err)
	}
	reloaded, err := f.carts.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	return reloaded
}

func groceryLines(storeID uuid.UUID) []models.CartItem {
	return []models.CartItem{
		{ProductID: uuid.New(), StoreID: storeID, Name: "Banana prata kg", UnitPriceCents: 790, Quantity: 1, LineSubtotalCents: 790},
		{ProductID: uuid.New(), StoreID: storeID, Name: "Tomate italiano kg", UnitPriceCents: 570, Quantity: 2, LineSubtotalCents: 1140},
	}
}

func (f *checkoutFixture) readyDraft(t *testing.T, customerID uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	_, err := f.svc.SetDeliveryOption(ctx, customerID, "fast")
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, customerID, testAddress())
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, customerID, enums.PaymentMethodPix)
	require.NoError(t, err)
}

func TestPlaceOrder_FreezesQuoteAndConvertsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	storeID := uuid.New()
	f.seedCart(t, customerID, groceryLines(storeID)...)
	f.readyDraft(t, customerID)

	ctx := context.Background()
	order, err := f.svc.PlaceOrder(ctx, customerID)
	require.NoError(t, err)

	assert.Equal(t, "IF-20260315-0001", order.OrderNumber)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), order.DeliveryCode)
	assert.Equal(t, enums.OrderStatusPlaced, order.Status)
	assert.Equal(t, storeID, order.StoreID)
	assert.Equal(t, int64(1930), order.SubtotalCents)
	assert.Equal(t, int64(1999), order.DeliveryFeeCents)
	assert.Equal(t, int64(99), order.ServiceFeeCents)
	assert.Equal(t, int64(0), order.DiscountCents)
	assert.Equal(t, int64(4028), order.TotalCents)
	assert.Equal(t, "40.28", order.Quote().Total.String())
	require.Len(t, order.Items, 2)

	// the cart flipped to converted inside the same transaction
	_, err = f.carts.FindActiveByCustomer(ctx, customerID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var eventCount int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventOrderPlaced, order.ID).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestPlaceOrder_AppliesPercentageCoupon(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)
	f.readyDraft(t, customerID)

	ctx := context.Background()
	_, err := f.svc.ApplyCoupon(ctx, customerID, "ifruits10")
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "IFRUITS10", *order.CouponCode)
	assert.Equal(t, int64(193), order.DiscountCents)
	assert.Equal(t, int64(1930+1999+99-193), order.TotalCents)
}

func TestPlaceOrder_FreeDeliveryCoupon(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)

	ctx := context.Background()
	_, err := f.svc.SetDeliveryOption(ctx, customerID, "standard")
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, customerID, testAddress())
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, customerID, enums.PaymentMethodCash)
	require.NoError(t, err)
	_, err = f.svc.ApplyCoupon(ctx, customerID, "FRETE")
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.DeliveryFeeCents)
	assert.Equal(t, int64(690), order.DiscountCents)
	assert.Equal(t, int64(1930+99-690), order.TotalCents)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID)
	f.readyDraft(t, customerID)

	_, err := f.svc.PlaceOrder(context.Background(), customerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPlaceOrder_IncompleteDraft(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)

	// delivery option is set, address and payment method are not
	_, err := f.svc.SetDeliveryOption(context.Background(), customerID, "standard")
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(context.Background(), customerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())
}

func TestPlaceOrder_CardMethodRequiresRegisteredCard(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)

	ctx := context.Background()
	_, err := f.svc.SetDeliveryOption(ctx, customerID, "standard")
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, customerID, testAddress())
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, customerID, enums.PaymentMethodCreditCard)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, customerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())

	// registering a card unblocks placement
	f.cards.count = 1
	order, err := f.svc.PlaceOrder(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCreditCard, order.PaymentMethod)
}

func TestPlaceOrder_StaleCouponRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)
	f.readyDraft(t, customerID)

	ctx := context.Background()
	_, err := f.svc.ApplyCoupon(ctx, customerID, "IFRUITS10")
	require.NoError(t, err)

	// the coupon is deactivated between apply and place
	record, err := f.carts.FindActiveByCustomer(ctx, customerID)
	require.NoError(t, err)
	stale := "EXPIRADO"
	record.CouponCode = &stale
	_, err = f.carts.Update(ctx, record)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, customerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// no order and no event leaked out of the aborted transaction
	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
}

func TestPlaceOrder_RetryAfterSuccessFindsNoActiveCart(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)
	f.readyDraft(t, customerID)

	ctx := context.Background()
	_, err := f.svc.PlaceOrder(ctx, customerID)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, customerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestReview_PricesDraftAndReportsReadiness(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)

	ctx := context.Background()
	draft, err := f.svc.Review(ctx, customerID)
	require.NoError(t, err)
	assert.False(t, NewReviewView(draft).ReadyToPlace)
	// no delivery option selected yet, so no fee
	assert.Equal(t, int64(1930+99), int64(draft.Quote.Total))

	f.readyDraft(t, customerID)
	draft, err = f.svc.Review(ctx, customerID)
	require.NoError(t, err)
	view := NewReviewView(draft)
	assert.True(t, view.ReadyToPlace)
	require.NotNil(t, view.DeliveryOption)
	assert.Equal(t, "fast", view.DeliveryOption.ID)
	assert.Equal(t, "40.28", view.Quote.Total)
}

func TestApplyCoupon_UnknownCode(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)

	_, err := f.svc.ApplyCoupon(context.Background(), customerID, "NADA")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "invalid coupon code", typed.Message())
}

func TestRemoveCoupon_RestoresFullPrice(t *testing.T) {
	f := newCheckoutFixture(t)
	customerID := uuid.New()
	f.seedCart(t, customerID, groceryLines(uuid.New())...)
	f.readyDraft(t, customerID)

	ctx := context.Background()
	draft, err := f.svc.ApplyCoupon(ctx, customerID, "IFRUITS10")
	require.NoError(t, err)
	assert.Equal(t, int64(193), int64(draft.Quote.Discount))

	draft, err = f.svc.RemoveCoupon(ctx, customerID)
	require.NoError(t, err)
	assert.Nil(t, draft.Cart.CouponCode)
	assert.Equal(t, int64(0), int64(draft.Quote.Discount))
	assert.Equal(t, int64(4028), int64(draft.Quote.Total))
}
