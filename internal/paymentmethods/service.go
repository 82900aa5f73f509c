package paymentmethods

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
)

var last4Re = regexp.MustCompile(`^\d{4}$`)

// Service manages registered card references. No PANs are stored and no
// gateway is called; cards exist so checkout can require one before a
// card-based placement.
type Service interface {
	ListCards(ctx context.Context, customerID uuid.UUID) ([]models.PaymentCard, error)
	CountCards(ctx context.Context, customerID uuid.UUID) (int64, error)
	RegisterCard(ctx context.Context, customerID uuid.UUID, input RegisterCardInput) (*models.PaymentCard, error)
	RemoveCard(ctx context.Context, customerID, cardID uuid.UUID) error
}

// RegisterCardInput captures the payload required to register a card reference.
type RegisterCardInput struct {
	Brand  string
	Last4  string
	Holder string
}

type service struct {
	repo CardRepository
}

// NewService builds a payment methods service.
func NewService(repo CardRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("card repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCards(ctx context.Context, customerID uuid.UUID) ([]models.PaymentCard, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cards")
	}
	return rows, nil
}

func (s *service) CountCards(ctx context.Context, customerID uuid.UUID) (int64, error) {
	if customerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cards")
	}
	return count, nil
}

func (s *service) RegisterCard(ctx context.Context, customerID uuid.UUID, input RegisterCardInput) (*models.PaymentCard, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	brand := strings.TrimSpace(input.Brand)
	holder := strings.TrimSpace(input.Holder)
	if brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card brand is required")
	}
	if holder == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card holder is required")
	}
	if !last4Re.MatchString(input.Last4) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last4 must be four digits")
	}

	card, err := s.repo.Create(ctx, &models.PaymentCard{
		CustomerID: customerID,
		Brand:      brand,
		Last4:      input.Last4,
		Holder:     holder,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store card")
	}
	return card, nil
}

func (s *service) RemoveCard(ctx context.Context, customerID, cardID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if cardID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card id is required")
	}
	affected, err := s.repo.Delete(ctx, cardID, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete card")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
	}
	return nil
}
