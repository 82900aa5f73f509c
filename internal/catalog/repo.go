package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/pagination"
)

// CatalogRepository defines the persistence surface required by the catalog service.
type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository
	FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStores(ctx context.Context, params pagination.Params) ([]models.Store, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, error)
	FindDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error)
	ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
}

// Repository implements CatalogRepository on GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CatalogRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindStore loads a store by id.
func (r *Repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ListStores returns active stores with cursor pagination.
func (r *Repository) ListStores(ctx context.Context, params pagination.Params) ([]models.Store, error) {
	query := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Store
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindProduct loads a product by id.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProductsByStore returns active products for a store with cursor pagination.
func (r *Repository) ListProductsByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ? AND active = ?", storeID, true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindDeliveryOption loads a delivery option by its string id.
func (r *Repository) FindDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error) {
	var option models.DeliveryOption
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// ListDeliveryOptions returns all active delivery options ordered by fee.
func (r *Repository) ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	var rows []models.DeliveryOption
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("fee_cents ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
