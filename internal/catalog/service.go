package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/pagination"
)

// Service exposes read access to stores, products and delivery options.
type Service interface {
	GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStores(ctx context.Context, params pagination.Params) (*StorePage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductPage, error)
	GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error)
	ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
}

// StorePage is a cursor-paginated slice of stores.
type StorePage struct {
	Stores     []models.Store
	NextCursor string
	HasMore    bool
}

// ProductPage is a cursor-paginated slice of products.
type ProductPage struct {
	Products   []models.Product
	NextCursor string
	HasMore    bool
}

type service struct {
	repo CatalogRepository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo CatalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.repo.FindStore(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) ListStores(ctx context.Context, params pagination.Params) (*StorePage, error) {
	rows, err := s.repo.ListStores(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &StorePage{Stores: rows}
	if len(rows) > limit {
		page.Stores = rows[:limit]
		page.HasMore = true
		last := page.Stores[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProductsByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductPage, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	rows, err := s.repo.ListProductsByStore(ctx, storeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &ProductPage{Products: rows}
	if len(rows) > limit {
		page.Products = rows[:limit]
		page.HasMore = true
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery option id is required")
	}
	option, err := s.repo.FindDeliveryOption(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery option")
	}
	return option, nil
}

func (s *service) ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	rows, err := s.repo.ListDeliveryOptions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery options")
	}
	return rows, nil
}
