package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

type IdempotencyPurger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeIdempotencyKeys returns a scheduler task that drops keys older
// than ttl.
func PurgeIdempotencyKeys(keys IdempotencyPurger, ttl time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := keys.Purge(ctx, time.Now().Add(-ttl))
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("idempotency: purged keys", "count", n, "ttl", ttl)
		}
		return nil
	}
}
