package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"finquest-server/internal/model"
)

const defaultTransactionTTL = 60 * time.Second

// TransactionCache keeps each user's full transaction list as one JSON value,
// keyed by a per-user version. Invalidation bumps the version, so a list
// computed before a write can only land under a version no reader asks for.
type TransactionCache struct {
	client redisv9.Cmdable
	ttl    time.Duration
}

func NewTransactionCache(client redisv9.Cmdable, ttl time.Duration) *TransactionCache {
	if ttl <= 0 {
		ttl = defaultTransactionTTL
	}
	return &TransactionCache{
		client: client,
		ttl:    ttl,
	}
}

// GetUserTransactions returns the cached list for the user's current version
// along with that version, which callers pass back to SetUserTransactions.
func (c *TransactionCache) GetUserTransactions(ctx context.Context, userID uint) ([]model.Transaction, int64, bool, error) {
	version, err := c.client.Get(ctx, userVersionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redisv9.Nil) {
		return nil, 0, false, fmt.Errorf("redis get transactions version failed: %w", err)
	}

	raw, err := c.client.Get(ctx, userTransactionsKey(userID, version)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, fmt.Errorf("redis get transactions failed: %w", err)
	}

	var txs []model.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, version, false, fmt.Errorf("unmarshal cached transactions failed: %w", err)
	}
	return txs, version, true, nil
}

func (c *TransactionCache) SetUserTransactions(ctx context.Context, userID uint, version int64, txs []model.Transaction) error {
	payload, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("marshal transactions cache failed: %w", err)
	}
	if err := c.client.Set(ctx, userTransactionsKey(userID, version), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set transactions failed: %w", err)
	}
	return nil
}

// InvalidateUserTransactions moves the user to a new version. Lists stored
// under older versions expire with their TTL.
func (c *TransactionCache) InvalidateUserTransactions(ctx context.Context, userID uint) error {
	if err := c.client.Incr(ctx, userVersionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis bump transactions version failed: %w", err)
	}
	return nil
}

func userVersionKey(userID uint) string {
	return fmt.Sprintf("finquest:tx:user:%d:version", userID)
}

func userTransactionsKey(userID uint, version int64) string {
	return fmt.Sprintf("finquest:tx:user:%d:v%d", userID, version)
}
