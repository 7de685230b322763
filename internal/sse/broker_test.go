package sse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDashboardFailed(errors.New("upstream down"))

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: dashboard.failed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"error":"upstream down"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestDashboardUpdated_Throttle(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	now := time.Now()
	b.PublishDashboardUpdated("first", now)
	b.PublishDashboardUpdated("second", now)
	b.PublishDashboardUpdated("third", now)

	time.Sleep(50 * time.Millisecond)
	got := drain(ch)
	if len(got) != 1 || !strings.Contains(got[0], `"checksum":"first"`) {
		t.Fatalf("inside window got %q, want only the first update", got)
	}

	time.Sleep(300 * time.Millisecond)
	got = drain(ch)
	if len(got) != 1 || !strings.Contains(got[0], `"checksum":"third"`) {
		t.Fatalf("after window got %q, want the latest coalesced update", got)
	}
}

func TestCredentialsUpdated(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCredentialsUpdated()

	select {
	case msg := <-ch:
		if !strings.HasPrefix(string(msg), "event: credentials.updated\n") {
			t.Errorf("unexpected message %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishDashboardUpdated("abc", time.Now())
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: dashboard.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Subscriber buffer holds 64 messages; the rest are dropped, not blocked on.
	for i := 0; i < 70; i++ {
		b.PublishCredentialsUpdated()
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.PublishDashboardUpdated("x", time.Now())
	b.PublishDashboardUpdated("y", time.Now())
	b.Close()

	// Buffered updates may still be queued; the channel must close after them.
	timeout := time.After(time.Second)
wait:
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				break wait
			}
		case <-timeout:
			t.Fatal("timeout waiting for channel close")
		}
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishCredentialsUpdated()
	b.PublishDashboardUpdated("z", time.Now())
	b.PublishDashboardFailed(errors.New("x"))
}
