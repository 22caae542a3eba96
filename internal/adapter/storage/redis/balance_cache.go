package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache implements ports.BalanceCache using Redis. Balances are
// stored as fixed-point strings under a short TTL; the cache is purely a
// read accelerator and is invalidated after every committed mutation.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "wallet:balance:",
	}
}

// Get retrieves a cached balance. Returns nil, nil on a miss.
func (c *BalanceCache) Get(ctx context.Context, walletID uuid.UUID) (*decimal.Decimal, error) {
	val, err := c.client.Get(ctx, c.prefix+walletID.String()).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis balance get: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("parse cached balance: %w", err)
	}
	return &balance, nil
}

// Set stores a balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+walletID.String(), balance.StringFixed(2), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance for the given wallets.
func (c *BalanceCache) Invalidate(ctx context.Context, walletIDs ...uuid.UUID) error {
	if len(walletIDs) == 0 {
		return nil
	}
	keys := make([]string, len(walletIDs))
	for i, id := range walletIDs {
		keys[i] = c.prefix + id.String()
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis balance invalidate: %w", err)
	}
	return nil
}
