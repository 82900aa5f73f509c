package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	"github.com/Dansouza2211/app-ifruits-sub000/internal/orders"
	"github.com/Dansouza2211/app-ifruits-sub000/internal/pricing"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/metrics"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type deliveryOptionLoader interface {
	GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string) (*models.Coupon, error)
}

type cardCounter interface {
	CountCards(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type orderNumberSource interface {
	Next(ctx context.Context) (string, error)
}

// Service drives the checkout draft and the atomic order placement. The
// draft (delivery option, address, payment method, coupon) lives on the
// active cart; the quote is recomputed from scratch on every read so a
// stale discount can never survive a cart mutation.
type Service interface {
	Review(ctx context.Context, customerID uuid.UUID) (*Draft, error)
	SetDeliveryOption(ctx context.Context, customerID uuid.UUID, optionID string) (*Draft, error)
	SetAddress(ctx context.Context, customerID uuid.UUID, address types.Address) (*Draft, error)
	SetPaymentMethod(ctx context.Context, customerID uuid.UUID, method enums.PaymentMethod) (*Draft, error)
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*Draft, error)
	RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*Draft, error)
	PlaceOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error)
}

// ServiceParams groups the checkout service dependencies.
type ServiceParams struct {
	CartRepo          cart.CartRepository
	OrdersRepo        orders.Repository
	DeliveryOptions   deliveryOptionLoader
	Coupons           couponValidator
	Cards             cardCounter
	Calculator        *pricing.Calculator
	OrderNumbers      orderNumberSource
	TransactionRunner txRunner
	Outbox            outboxPublisher
	Stats             *metrics.OrderMetrics
}

type service struct {
	carts   cart.CartRepository
	orders  orders.Repository
	options deliveryOptionLoader
	coupons couponValidator
	cards   cardCounter
	calc    *pricing.Calculator
	numbers orderNumberSource
	tx      txRunner
	outbox  outboxPublisher
	stats   *metrics.OrderMetrics
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.DeliveryOptions == nil {
		return nil, fmt.Errorf("delivery option loader required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if params.Cards == nil {
		return nil, fmt.Errorf("card counter required")
	}
	if params.Calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if params.OrderNumbers == nil {
		return nil, fmt.Errorf("order number source required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		carts:   params.CartRepo,
		orders:  params.OrdersRepo,
		options: params.DeliveryOptions,
		coupons: params.Coupons,
		cards:   params.Cards,
		calc:    params.Calculator,
		numbers: params.OrderNumbers,
		tx:      params.TransactionRunner,
		outbox:  params.Outbox,
		stats:   params.Stats,
	}, nil
}

// Review loads the active cart and prices it.
func (s *service) Review(ctx context.Context, customerID uuid.UUID) (*Draft, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	record, err := s.loadActiveCart(ctx, s.carts, customerID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, record)
}

// SetDeliveryOption attaches a shipping tier to the draft.
func (s *service) SetDeliveryOption(ctx context.Context, customerID uuid.UUID, optionID string) (*Draft, error) {
	option, err := s.options.GetDeliveryOption(ctx, optionID)
	if err != nil {
		return nil, err
	}
	return s.updateDraft(ctx, customerID, func(record *models.CartRecord) error {
		record.DeliveryOptionID = &option.ID
		return nil
	})
}

// SetAddress attaches the delivery address to the draft.
func (s *service) SetAddress(ctx context.Context, customerID uuid.UUID, address types.Address) (*Draft, error) {
	if err := address.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return s.updateDraft(ctx, customerID, func(record *models.CartRecord) error {
		record.DeliveryAddress = &address
		return nil
	})
}

// SetPaymentMethod attaches the payment method to the draft. Card coverage
// is checked at placement, not here, so customers can pick "card" first and
// register one right after.
func (s *service) SetPaymentMethod(ctx context.Context, customerID uuid.UUID, method enums.PaymentMethod) (*Draft, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	return s.updateDraft(ctx, customerID, func(record *models.CartRecord) error {
		record.PaymentMethod = &method
		return nil
	})
}

// ApplyCoupon validates the code and stores its canonical form on the draft.
func (s *service) ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*Draft, error) {
	coupon, err := s.coupons.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.updateDraft(ctx, customerID, func(record *models.CartRecord) error {
		record.CouponCode = &coupon.Code
		return nil
	})
}

// RemoveCoupon clears any applied coupon.
func (s *service) RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*Draft, error) {
	return s.updateDraft(ctx, customerID, func(record *models.CartRecord) error {
		record.CouponCode = nil
		return nil
	})
}

// PlaceOrder atomically freezes the draft into an order. The cart flips to
// converted in the same transaction, so retries land on a missing active
// cart instead of a duplicate order.
func (s *service) PlaceOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCarts := s.carts.WithTx(tx)
		record, err := s.loadActiveCart(ctx, txCarts, customerID)
		if err != nil {
			return err
		}
		if len(record.Items) == 0 || record.StoreID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		if record.DeliveryOptionID == nil {
			return pkgerrors.New(pkgerrors.CodePrecondition, "delivery option not selected")
		}
		if record.DeliveryAddress == nil {
			return pkgerrors.New(pkgerrors.CodePrecondition, "delivery address not set")
		}
		if record.PaymentMethod == nil {
			return pkgerrors.New(pkgerrors.CodePrecondition, "payment method not selected")
		}

		if record.PaymentMethod.RequiresCard() {
			count, err := s.cards.CountCards(ctx, customerID)
			if err != nil {
				return err
			}
			if count == 0 {
				return pkgerrors.New(pkgerrors.CodePrecondition, "a registered card is required for card payments")
			}
		}

		draft, err := s.price(ctx, record)
		if err != nil {
			return err
		}

		orderNumber, err := s.numbers.Next(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}
		deliveryCode, err := NewDeliveryCode()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate delivery code")
		}

		now := time.Now()
		order := &models.Order{
			OrderNumber:      orderNumber,
			CustomerID:       customerID,
			StoreID:          *record.StoreID,
			Status:           enums.OrderStatusPlaced,
			Currency:         record.Currency,
			DeliveryOptionID: draft.DeliveryOption.ID,
			DeliveryLabel:    draft.DeliveryOption.Label,
			DeliveryAddress:  *record.DeliveryAddress,
			PaymentMethod:    *record.PaymentMethod,
			CouponCode:       record.CouponCode,
			SubtotalCents:    int64(draft.Quote.Subtotal),
			DeliveryFeeCents: int64(draft.Quote.DeliveryFee),
			ServiceFeeCents:  int64(draft.Quote.ServiceFee),
			DiscountCents:    int64(draft.Quote.Discount),
			TotalCents:       int64(draft.Quote.Total),
			DeliveryCode:     deliveryCode,
			PlacedAt:         now,
			Items:            make([]models.OrderLineItem, 0, len(record.Items)),
		}
		for _, item := range record.Items {
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID:         item.ProductID,
				Name:              item.Name,
				UnitPriceCents:    item.UnitPriceCents,
				Quantity:          item.Quantity,
				LineSubtotalCents: item.LineSubtotalCents,
			})
		}

		created, err := s.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		record.Status = enums.CartStatusConverted
		record.ConvertedAt = &now
		if _, err := txCarts.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{CustomerID: customerID, Source: "checkout"},
			Data: outbox.OrderPlacedPayload{
				OrderID:       created.ID,
				OrderNumber:   created.OrderNumber,
				CustomerID:    customerID,
				StoreID:       created.StoreID,
				PaymentMethod: created.PaymentMethod,
				TotalCents:    created.TotalCents,
				Currency:      created.Currency,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		placed = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stats.IncPlaced()
	return placed, nil
}

func (s *service) loadActiveCart(ctx context.Context, repo cart.CartRepository, customerID uuid.UUID) (*models.CartRecord, error) {
	record, err := repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) updateDraft(ctx context.Context, customerID uuid.UUID, mutate func(record *models.CartRecord) error) (*Draft, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCarts := s.carts.WithTx(tx)
		record, err := s.loadActiveCart(ctx, txCarts, customerID)
		if err != nil {
			return err
		}
		if err := mutate(record); err != nil {
			return err
		}
		saved, err = txCarts.Update(ctx, record)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout draft")
	}
	return s.price(ctx, saved)
}

// price resolves the draft references and recomputes the quote.
func (s *service) price(ctx context.Context, record *models.CartRecord) (*Draft, error) {
	draft := &Draft{Cart: record}

	var deliveryFee types.Cents
	if record.DeliveryOptionID != nil {
		option, err := s.options.GetDeliveryOption(ctx, *record.DeliveryOptionID)
		if err != nil {
			return nil, err
		}
		draft.DeliveryOption = option
		deliveryFee = types.Cents(option.FeeCents)
	}

	if record.CouponCode != nil {
		coupon, err := s.coupons.Validate(ctx, *record.CouponCode)
		if err != nil {
			return nil, err
		}
		draft.Coupon = coupon
	}

	draft.Quote = s.calc.ComputeQuote(pricing.Input{
		Subtotal:    types.Cents(record.SubtotalCents()),
		DeliveryFee: deliveryFee,
		Coupon:      draft.Coupon,
	})
	return draft, nil
}
