package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

// OrderNumberGenerator issues human-readable order numbers like
// IF-20260310-0042, unique per day via a Redis counter.
type OrderNumberGenerator struct {
	store counterStore
	now   func() time.Time
}

// NewOrderNumberGenerator builds a generator backed by the provided counter store.
func NewOrderNumberGenerator(store counterStore) (*OrderNumberGenerator, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	return &OrderNumberGenerator{store: store, now: time.Now}, nil
}

// Next returns the next order number for today.
func (g *OrderNumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.now().Format("20060102")
	key := g.store.CounterKey("orders:" + day)
	// keep the counter around past midnight so late placements stay unique
	seq, err := g.store.IncrWithTTL(ctx, key, 48*time.Hour)
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}
	return fmt.Sprintf("IF-%s-%04d", day, seq), nil
}

// NewDeliveryCode returns a four digit confirmation code compared against
// the courier's input at delivery time.
func NewDeliveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate delivery code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
