package orders

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/metrics"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the order lifecycle. Status only ever moves through the
// fixed chain placed → preparing → on_the_way → delivered, with canceled
// reachable from the first two stages. Transitions are event-driven; nothing
// here runs on a timer.
type Service interface {
	GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderPage, error)
	Advance(ctx context.Context, orderID uuid.UUID, event enums.OrderEvent) (*models.Order, error)
	ConfirmDelivery(ctx context.Context, customerID, orderID uuid.UUID, enteredCode string) (*models.Order, error)
	Cancel(ctx context.Context, customerID, orderID uuid.UUID, reason string) (*models.Order, error)
}

// OrderPage is a cursor-paginated slice of orders.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
	HasMore    bool
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	stats  *metrics.OrderMetrics
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, stats *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		stats:  stats,
	}, nil
}

// advanceTargets maps lifecycle events to their required current status and
// resulting status.
var advanceTargets = map[enums.OrderEvent]struct {
	from enums.OrderStatus
	to   enums.OrderStatus
}{
	enums.OrderEventConfirmed:       {from: enums.OrderStatusPlaced, to: enums.OrderStatusPreparing},
	enums.OrderEventCourierAssigned: {from: enums.OrderStatusPreparing, to: enums.OrderStatusOnTheWay},
}

func (s *service) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByIDAndCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &OrderPage{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		page.HasMore = true
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// Advance applies a backend-originated lifecycle event: the store confirming
// the order or a courier picking it up.
func (s *service) Advance(ctx context.Context, orderID uuid.UUID, event enums.OrderEvent) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	target, ok := advanceTargets[event]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown lifecycle event")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status != target.from {
			s.stats.IncRejected(order.Status.String(), event.String())
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("event %s not allowed while order is %s", event, order.Status))
		}

		moved, err := repo.TransitionStatus(ctx, order.ID, target.from, target.to, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			s.stats.IncRejected(target.from.String(), event.String())
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if err := s.emitStatusChange(ctx, tx, order, enums.EventOrderAdvanced, target.from, target.to, event.String()); err != nil {
			return err
		}

		s.stats.IncTransition(target.from.String(), target.to.String())
		order.Status = target.to
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmDelivery moves an on-the-way order to delivered, but only when the
// entered code matches the code generated at placement.
func (s *service) ConfirmDelivery(ctx context.Context, customerID, orderID uuid.UUID, enteredCode string) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if enteredCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery code is required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDAndCustomer(ctx, orderID, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status != enums.OrderStatusOnTheWay {
			s.stats.IncRejected(order.Status.String(), "delivery_confirmed")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("delivery cannot be confirmed while order is %s", order.Status))
		}
		if subtle.ConstantTimeCompare([]byte(order.DeliveryCode), []byte(enteredCode)) != 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery code does not match")
		}

		now := time.Now()
		moved, err := repo.TransitionStatus(ctx, order.ID, enums.OrderStatusOnTheWay, enums.OrderStatusDelivered, map[string]any{
			"delivered_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if err := s.emitStatusChange(ctx, tx, order, enums.EventOrderDelivered, enums.OrderStatusOnTheWay, enums.OrderStatusDelivered, "delivery_confirmed"); err != nil {
			return err
		}

		s.stats.IncTransition(enums.OrderStatusOnTheWay.String(), enums.OrderStatusDelivered.String())
		order.Status = enums.OrderStatusDelivered
		order.DeliveredAt = &now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel aborts an order that has not left the store yet.
func (s *service) Cancel(ctx context.Context, customerID, orderID uuid.UUID, reason string) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDAndCustomer(ctx, orderID, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status != enums.OrderStatusPlaced && order.Status != enums.OrderStatusPreparing {
			s.stats.IncRejected(order.Status.String(), "cancel_requested")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot be canceled while %s", order.Status))
		}

		now := time.Now()
		moved, err := repo.TransitionStatus(ctx, order.ID, order.Status, enums.OrderStatusCanceled, map[string]any{
			"canceled_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if err := s.emitStatusChange(ctx, tx, order, enums.EventOrderCanceled, order.Status, enums.OrderStatusCanceled, reason); err != nil {
			return err
		}

		s.stats.IncTransition(order.Status.String(), enums.OrderStatusCanceled.String())
		order.Status = enums.OrderStatusCanceled
		order.CanceledAt = &now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) emitStatusChange(ctx context.Context, tx *gorm.DB, order *models.Order, eventType enums.OutboxEventType, from, to enums.OrderStatus, reason string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{CustomerID: order.CustomerID, Source: "orders"},
		Data: outbox.OrderStatusChangedPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			From:        from,
			To:          to,
			Reason:      reason,
		},
	})
}
