package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/cityguide/internal/entitlement"
)

// DBChecker adapts *sql.DB to Checker.
type DBChecker struct{ DB *sql.DB }

func (d DBChecker) Check(ctx context.Context) error { return d.DB.PingContext(ctx) }

// RedisChecker adapts *redis.Client to Checker.
type RedisChecker struct{ Client *redis.Client }

func (r RedisChecker) Check(ctx context.Context) error { return r.Client.Ping(ctx).Err() }

// EntitlementChecker performs a read through the entitlement store so the
// check covers whichever backend is configured. A missing key is healthy.
type EntitlementChecker struct {
	Store *entitlement.Store
}

func (e EntitlementChecker) Check(ctx context.Context) error {
	_, err := e.Store.Get(ctx, probeKey)
	if err != nil && !errors.Is(err, entitlement.ErrNotFound) {
		return fmt.Errorf("reading entitlement store: %w", err)
	}
	return nil
}

const probeKey = "healthz-probe"
