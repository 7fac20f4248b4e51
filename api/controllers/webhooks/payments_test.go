package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	internalwebhooks "github.com/tariqmansouri/vendora-backend/internal/webhooks"
	"github.com/tariqmansouri/vendora-backend/internal/webhooks/payments"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
)

const testSigningSecret = "whsec_test_secret"

type fakePaymentService struct {
	calls int
	err   error
	last  payments.PaymentEvent
}

func (f *fakePaymentService) HandlePaymentEvent(ctx context.Context, event payments.PaymentEvent) error {
	f.calls++
	f.last = event
	return f.err
}

type fakeSigner struct {
	secret string
}

func (f fakeSigner) SigningSecret() string { return f.secret }

// inMemoryStore satisfies redis.IdempotencyStore for guard tests.
type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string]string{}}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func signBody(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newGuard(t *testing.T, store *inMemoryStore, scope string) *internalwebhooks.ReplayGuard {
	t.Helper()
	guard, err := internalwebhooks.NewReplayGuard(store, time.Hour, scope)
	if err != nil {
		t.Fatalf("build guard: %v", err)
	}
	return guard
}

func postPaymentEvent(handler http.HandlerFunc, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("Vendora-Signature", signature)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestPaymentsProcessesEvent(t *testing.T) {
	t.Parallel()

	svc := &fakePaymentService{}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	body := `{"event_id":"evt_1","type":"payment.updated","payment_id":"pay_1","order_reference":"G-20250401-0001","state":"paid"}`
	resp := postPaymentEvent(handler, body, signBody(body, testSigningSecret))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected 1 call got %d", svc.calls)
	}
	if svc.last.EventID != "evt_1" || svc.last.PaymentID != "pay_1" {
		t.Fatalf("unexpected event: %+v", svc.last)
	}
	if svc.last.OrderReference != "G-20250401-0001" || svc.last.State != "paid" {
		t.Fatalf("unexpected event: %+v", svc.last)
	}
}

func TestPaymentsDuplicateDeliveryShortCircuits(t *testing.T) {
	svc := &fakePaymentService{}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	body := `{"event_id":"evt_2","payment_id":"pay_2","order_reference":"G-20250401-0002","state":"paid"}`
	signature := signBody(body, testSigningSecret)

	first := postPaymentEvent(handler, body, signature)
	if first.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200 got %d", first.Code)
	}
	second := postPaymentEvent(handler, body, signature)
	if second.Code != http.StatusOK {
		t.Fatalf("second delivery: expected 200 got %d", second.Code)
	}
	if svc.calls != 1 {
		t.Fatalf("duplicate delivery reached the service: %d calls", svc.calls)
	}
}

func TestPaymentsEventIDFallsBackToPaymentID(t *testing.T) {
	svc := &fakePaymentService{}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	body := `{"payment_id":"pay_3","order_reference":"G-20250401-0003","state":"failed"}`
	resp := postPaymentEvent(handler, body, signBody(body, testSigningSecret))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.last.EventID != "pay_3" {
		t.Fatalf("expected payment id fallback got %q", svc.last.EventID)
	}
}

func TestPaymentsRejectsMissingSignature(t *testing.T) {
	svc := &fakePaymentService{}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	resp := postPaymentEvent(handler, `{"event_id":"evt_4","payment_id":"pay_4"}`, "")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("unsigned delivery reached the service")
	}
}

func TestPaymentsRejectsInvalidSignature(t *testing.T) {
	svc := &fakePaymentService{}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	body := `{"event_id":"evt_5","payment_id":"pay_5"}`
	resp := postPaymentEvent(handler, body, signBody(body, "wrong_secret"))

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("forged delivery reached the service")
	}
}

func TestPaymentsFailureReleasesGuardMark(t *testing.T) {
	svc := &fakePaymentService{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway lookup failed")}
	handler := Payments(svc, fakeSigner{secret: testSigningSecret}, newGuard(t, newInMemoryStore(), "payments"), nil)

	body := `{"event_id":"evt_6","payment_id":"pay_6","order_reference":"G-20250401-0006","state":"paid"}`
	signature := signBody(body, testSigningSecret)

	first := postPaymentEvent(handler, body, signature)
	if first.Code != http.StatusBadGateway {
		t.Fatalf("first delivery: expected 502 got %d", first.Code)
	}

	svc.err = nil
	second := postPaymentEvent(handler, body, signature)
	if second.Code != http.StatusOK {
		t.Fatalf("second delivery: expected 200 got %d (%s)", second.Code, second.Body.String())
	}
	if svc.calls != 2 {
		t.Fatalf("retry did not reach the service: %d calls", svc.calls)
	}
}
