package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGuardStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeGuardStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeGuardStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeGuardStore) IdempotencyKey(scope, id string) string {
	return "vendora:idempotency:" + scope + ":" + id
}

func (f *fakeGuardStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func TestReplayGuardFirstDelivery(t *testing.T) {
	store := &fakeGuardStore{setNXResult: true}
	guard, err := NewReplayGuard(store, 24*time.Hour, "payments")
	if err != nil {
		t.Fatalf("NewReplayGuard: %v", err)
	}

	already, err := guard.CheckAndMark(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if already {
		t.Fatalf("expected first delivery to return false, got true")
	}
	if store.lastKey != "vendora:idempotency:payments:evt-1" {
		t.Fatalf("unexpected key: %q", store.lastKey)
	}
	if store.lastTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %v", store.lastTTL)
	}
}

func TestReplayGuardRedelivery(t *testing.T) {
	store := &fakeGuardStore{setNXResult: false}
	guard, err := NewReplayGuard(store, time.Hour, "tracking")
	if err != nil {
		t.Fatalf("NewReplayGuard: %v", err)
	}

	already, err := guard.CheckAndMark(context.Background(), "evt-2")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if !already {
		t.Fatalf("expected redelivery, got false")
	}
}

func TestReplayGuardStoreError(t *testing.T) {
	store := &fakeGuardStore{setNXError: errors.New("boom")}
	guard, err := NewReplayGuard(store, time.Hour, "payments")
	if err != nil {
		t.Fatalf("NewReplayGuard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt-3"); err == nil {
		t.Fatalf("expected error from store, got nil")
	}
}

func TestReplayGuardDeleteReleasesMark(t *testing.T) {
	store := &fakeGuardStore{setNXResult: true}
	guard, err := NewReplayGuard(store, time.Hour, "payments")
	if err != nil {
		t.Fatalf("NewReplayGuard: %v", err)
	}

	if err := guard.Delete(context.Background(), "evt-4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.lastDeleted != "vendora:idempotency:payments:evt-4" {
		t.Fatalf("unexpected deleted key: %q", store.lastDeleted)
	}
}

func TestReplayGuardRequiresEventID(t *testing.T) {
	store := &fakeGuardStore{setNXResult: true}
	guard, err := NewReplayGuard(store, time.Hour, "payments")
	if err != nil {
		t.Fatalf("NewReplayGuard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty event id")
	}
	if err := guard.Delete(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty event id")
	}
}
