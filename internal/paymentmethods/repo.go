package paymentmethods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
)

// CardRepository defines the persistence surface for registered cards.
type CardRepository interface {
	WithTx(tx *gorm.DB) CardRepository
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentCard, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	Create(ctx context.Context, card *models.PaymentCard) (*models.PaymentCard, error)
	Delete(ctx context.Context, id, customerID uuid.UUID) (int64, error)
}

// Repository implements CardRepository on GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a card repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CardRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByCustomer returns the customer's cards, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentCard, error) {
	var rows []models.PaymentCard
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByCustomer counts the customer's registered cards.
func (r *Repository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentCard{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// Create inserts a new card.
func (r *Repository) Create(ctx context.Context, card *models.PaymentCard) (*models.PaymentCard, error) {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

// Delete removes a card owned by the customer and reports affected rows.
func (r *Repository) Delete(ctx context.Context, id, customerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		Delete(&models.PaymentCard{})
	return res.RowsAffected, res.Error
}
