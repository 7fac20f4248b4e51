// Package webhooks holds the pieces shared by the inbound webhook surfaces:
// the Redis-backed replay guard that keeps redelivered events from running
// twice.
package webhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tariqmansouri/vendora-backend/pkg/redis"
)

// ReplayGuard marks processed event IDs in Redis so redeliveries short-circuit.
// Each webhook surface gets its own scope, so a payment event and a tracking
// event with the same provider ID never collide.
type ReplayGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewReplayGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*ReplayGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &ReplayGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark records the event ID and reports whether it was already seen.
func (g *ReplayGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so the gateway's retry can reprocess the event
// after a handler failure.
func (g *ReplayGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.Del(ctx, key)
}
