package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"ifttt-relay/internal/notify"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, notification notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, notification)
	return n.err
}

func (n *recordingNotifier) notifications() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.got...)
}

func parisLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestEmitUsesNowForMissingTimestamp(t *testing.T) {
	rec := &recordingNotifier{}
	svc := NewService([]notify.Notifier{rec}, parisLocation(t), discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC) }

	if err := svc.Emit(context.Background(), notify.Event{Level: notify.LevelInfo, Source: "a", Message: "b"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	got := rec.notifications()
	if len(got) != 1 || got[0].Value1 != "⏳ 2024/01/15-14:30:00" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestEmitContinuesAfterNotifierError(t *testing.T) {
	failing := &recordingNotifier{err: &notify.DeliveryError{Provider: "ifttt", StatusCode: 500, Status: "500 Internal Server Error"}}
	ok := &recordingNotifier{}
	svc := NewService([]notify.Notifier{failing, ok}, time.UTC, discardLogger())

	err := svc.Emit(context.Background(), notify.Event{Level: notify.LevelError, Source: "a", Message: "b"})
	var delivery *notify.DeliveryError
	if !errors.As(err, &delivery) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if len(ok.notifications()) != 1 {
		t.Fatal("second notifier was not called")
	}
}

func TestEmitWithoutNotifiers(t *testing.T) {
	svc := NewService(nil, time.UTC, discardLogger())
	if err := svc.Emit(context.Background(), notify.Event{}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
}

func TestDispatchIgnoresRequestCancellation(t *testing.T) {
	rec := &recordingNotifier{}
	svc := NewService([]notify.Notifier{rec}, time.UTC, discardLogger())

	ctx, cancel := context.WithCancel(WithRequestID(context.Background(), "req-1"))
	cancel()
	svc.Dispatch(ctx, notify.Event{Level: notify.LevelDebug, Source: "s", Message: "m"})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := svc.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := rec.notifications(); len(got) != 1 || got[0].Value2 != "🔍  s" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	svc := NewService([]notify.Notifier{blockingNotifier(block)}, time.UTC, discardLogger())
	svc.Dispatch(context.Background(), notify.Event{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type blockingNotifier chan struct{}

func (b blockingNotifier) Notify(context.Context, notify.Notification) error {
	<-b
	return nil
}

// End to end: inbound request, detached dispatch, outbound IFTTT trigger.
func TestRelayForwardsToTrigger(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body map[string]string
	)
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode outbound body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer provider.Close()

	ifttt := notify.NewIFTTTNotifier(provider.URL, "/trigger/{event}/with/key/{key}", "log", "key", time.Second)
	svc := NewService([]notify.Notifier{ifttt}, parisLocation(t), discardLogger())
	h := NewHandler(svc, discardLogger(), Options{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"level":"warn","source":"svc-a","message":"disk low"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if path != "/trigger/log/with/key/key" {
		t.Fatalf("outbound path = %q", path)
	}
	if !strings.HasSuffix(body["value2"], "⚡  svc-a") {
		t.Fatalf("value2 = %q", body["value2"])
	}
	if body["value3"] != "disk low" {
		t.Fatalf("value3 = %q", body["value3"])
	}
	if !strings.HasPrefix(body["value1"], "⏳ ") {
		t.Fatalf("value1 = %q", body["value1"])
	}
}

func TestRelayRejectsGetWhenProviderFails(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	ifttt := notify.NewIFTTTNotifier(provider.URL, "/trigger/{event}/with/key/{key}", "log", "key", time.Second)
	svc := NewService([]notify.Notifier{ifttt}, time.UTC, discardLogger())
	h := NewHandler(svc, discardLogger(), Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
