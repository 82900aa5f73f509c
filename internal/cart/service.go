package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart mutation and read operations. A customer has at most
// one active cart, and that cart only ever holds items from a single store.
type Service interface {
	GetActiveCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	IncreaseItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error)
	DecreaseItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
}

// AddItemInput captures the payload required to add a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	ttl      time.Duration
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		ttl:      ttl,
	}, nil
}

// GetActiveCart returns the customer's active cart, creating an empty one on
// first access so the client always has a cart to render.
func (s *service) GetActiveCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.createEmptyCart(ctx, customerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// AddItem adds a product to the active cart, snapshotting its name and unit
// price. Adding a second store's product is rejected until the cart is
// cleared.
func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	return s.mutate(ctx, customerID, func(txRepo CartRepository, record *models.CartRecord) error {
		if record.StoreID != nil && *record.StoreID != product.StoreID {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already holds items from another store")
		}

		if line := findLine(record, product.ID); line != nil {
			line.Quantity += qty
			line.LineSubtotalCents = int64(line.Quantity) * line.UnitPriceCents
			return txRepo.UpsertItem(ctx, line)
		}

		storeID := product.StoreID
		record.StoreID = &storeID
		if _, err := txRepo.Update(ctx, record); err != nil {
			return err
		}
		return txRepo.UpsertItem(ctx, &models.CartItem{
			CartID:            record.ID,
			ProductID:         product.ID,
			StoreID:           product.StoreID,
			Name:              product.Name,
			UnitPriceCents:    product.PriceCents,
			Quantity:          qty,
			LineSubtotalCents: int64(qty) * product.PriceCents,
		})
	})
}

// IncreaseItem bumps the line quantity by one.
func (s *service) IncreaseItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error) {
	return s.adjustQuantity(ctx, customerID, productID, 1)
}

// DecreaseItem lowers the line quantity by one; at quantity one the line is
// removed entirely.
func (s *service) DecreaseItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error) {
	return s.adjustQuantity(ctx, customerID, productID, -1)
}

// RemoveItem drops the product line regardless of quantity.
func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, customerID, func(txRepo CartRepository, record *models.CartRecord) error {
		if findLine(record, productID) == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		if err := txRepo.DeleteItem(ctx, record.ID, productID); err != nil {
			return err
		}
		return s.unbindStoreIfEmptied(ctx, txRepo, record, productID)
	})
}

// Clear removes every line and unbinds the cart from its store so the next
// add may come from anywhere.
func (s *service) Clear(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	return s.mutate(ctx, customerID, func(txRepo CartRepository, record *models.CartRecord) error {
		if err := txRepo.DeleteItems(ctx, record.ID); err != nil {
			return err
		}
		record.StoreID = nil
		record.CouponCode = nil
		_, err := txRepo.Update(ctx, record)
		return err
	})
}

func (s *service) adjustQuantity(ctx context.Context, customerID, productID uuid.UUID, delta int) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, customerID, func(txRepo CartRepository, record *models.CartRecord) error {
		line := findLine(record, productID)
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}

		next := line.Quantity + delta
		if next < 1 {
			if err := txRepo.DeleteItem(ctx, record.ID, productID); err != nil {
				return err
			}
			return s.unbindStoreIfEmptied(ctx, txRepo, record, productID)
		}

		line.Quantity = next
		line.LineSubtotalCents = int64(next) * line.UnitPriceCents
		return txRepo.UpsertItem(ctx, line)
	})
}

// mutate runs fn against the active cart inside a transaction, refreshes the
// cart TTL, and reloads the record afterwards.
func (s *service) mutate(ctx context.Context, customerID uuid.UUID, fn func(txRepo CartRepository, record *models.CartRecord) error) (*models.CartRecord, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := txRepo.FindActiveByCustomer(ctx, customerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record, err = txRepo.Create(ctx, &models.CartRecord{
				CustomerID: customerID,
				Status:     enums.CartStatusActive,
				Currency:   enums.CurrencyBRL,
				ValidUntil: time.Now().Add(s.ttl),
			})
			if err != nil {
				return err
			}
		}

		if err := fn(txRepo, record); err != nil {
			return err
		}

		record.ValidUntil = time.Now().Add(s.ttl)
		if _, err := txRepo.Update(ctx, record); err != nil {
			return err
		}

		saved, err = txRepo.FindByID(ctx, record.ID)
		return err
	})
	if err != nil {
		var domainErr *pkgerrors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

func (s *service) createEmptyCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record, err := s.repo.WithTx(tx).Create(ctx, &models.CartRecord{
			CustomerID: customerID,
			Status:     enums.CartStatusActive,
			Currency:   enums.CurrencyBRL,
			ValidUntil: time.Now().Add(s.ttl),
		})
		if err != nil {
			return err
		}
		saved = record
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return saved, nil
}

// unbindStoreIfEmptied clears the store binding when the deleted line was the
// last one. The record's preloaded Items still include the removed product.
func (s *service) unbindStoreIfEmptied(ctx context.Context, txRepo CartRepository, record *models.CartRecord, removedProductID uuid.UUID) error {
	remaining := 0
	for _, item := range record.Items {
		if item.ProductID != removedProductID {
			remaining++
		}
	}
	if remaining > 0 {
		return nil
	}
	record.StoreID = nil
	_, err := txRepo.Update(ctx, record)
	return err
}

func findLine(record *models.CartRecord, productID uuid.UUID) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].ProductID == productID {
			return &record.Items[i]
		}
	}
	return nil
}
