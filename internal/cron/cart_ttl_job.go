package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/outbox"
)

const cartExpireBatchSize = 200

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CartTTLJobParams configure the stale cart sweeper.
type CartTTLJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Carts  cart.CartRepository
	Outbox outboxEmitter
}

// NewCartTTLJob builds the cron job that expires carts past their
// valid_until and announces each expiration on the outbox.
func NewCartTTLJob(params CartTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &cartTTLJob{
		logg:   params.Logger,
		db:     params.DB,
		carts:  params.Carts,
		outbox: params.Outbox,
		now:    time.Now,
	}, nil
}

type cartTTLJob struct {
	logg   *logger.Logger
	db     txRunner
	carts  cart.CartRepository
	outbox outboxEmitter
	now    func() time.Time
}

func (j *cartTTLJob) Name() string { return "cart-ttl" }

func (j *cartTTLJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var expired int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.carts.WithTx(tx).ExpireStale(ctx, now, cartExpireBatchSize)
		if err != nil {
			return fmt.Errorf("expire stale carts: %w", err)
		}
		for _, record := range rows {
			event := outbox.DomainEvent{
				EventType:     enums.EventCartExpired,
				AggregateType: enums.AggregateCart,
				AggregateID:   record.ID,
				Version:       1,
				OccurredAt:    now,
				Data: outbox.CartExpiredPayload{
					CartID:     record.ID,
					CustomerID: record.CustomerID,
					ItemCount:  len(record.Items),
				},
			}
			if err := j.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		expired = len(rows)
		return nil
	})
	if err != nil {
		return err
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": expired})
	j.logg.Info(logCtx, "cart expiration loop complete")
	return nil
}
