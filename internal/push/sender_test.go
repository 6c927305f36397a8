package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xevon/studio-backend/internal/config"
)

func newTestSender(url, key string) *Sender {
	return NewSender(config.PushConfig{Endpoint: url, ServerKey: key, Timeout: 2 * time.Second, IconURL: "/logo.png"})
}

func TestSendToToken_PostsLegacyPayload(t *testing.T) {
	var gotAuth string
	var got fcmRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"multicast_id":7,"success":1,"failure":0,"results":[{"message_id":"0:1"}]}`))
	}))
	defer srv.Close()

	res, err := newTestSender(srv.URL, "srv-key").SendToToken(context.Background(), "device-1", "New Order Received", "Starter purchased by A (1)")
	if err != nil {
		t.Fatalf("SendToToken: %v", err)
	}
	if res.Success != 1 || res.MulticastID != 7 || res.Simulated {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotAuth != "key=srv-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if got.To != "device-1" || got.Priority != "high" || got.Notification.Sound != "default" ||
		got.Notification.Title != "New Order Received" || got.Notification.Icon != "/logo.png" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendToToken_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newTestSender(srv.URL, "bad").SendToToken(context.Background(), "d", "t", "b"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSendToToken_FailureCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"multicast_id":1,"success":0,"failure":1,"results":[{"error":"NotRegistered"}]}`))
	}))
	defer srv.Close()

	res, err := newTestSender(srv.URL, "k").SendToToken(context.Background(), "d", "t", "b")
	if !errors.Is(err, ErrDeliveryFailed) || !strings.Contains(err.Error(), "NotRegistered") {
		t.Fatalf("expected ErrDeliveryFailed with reason, got %v", err)
	}
	if res == nil || res.Failure != 1 {
		t.Fatalf("expected result with failure count, got %+v", res)
	}
}

func TestSendToToken_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newTestSender(srv.URL, "k").SendToToken(context.Background(), "d", "t", "b"); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestSendToToken_SimulatedAndGuards(t *testing.T) {
	s := newTestSender("http://127.0.0.1:1", "")
	res, err := s.SendToToken(context.Background(), SimulatedToken(time.UnixMilli(42)), "t", "b")
	if err != nil || !res.Simulated {
		t.Fatalf("simulated tokens must not be sent: %+v, %v", res, err)
	}
	if _, err := s.SendToToken(context.Background(), "real", "t", "b"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.SendToToken(context.Background(), " ", "t", "b"); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestSimulatedToken(t *testing.T) {
	tok := SimulatedToken(time.UnixMilli(1700000000000))
	if tok != "simulated_token_1700000000000" || !IsSimulated(tok) {
		t.Fatalf("unexpected token %q", tok)
	}
	if IsSimulated("fcm-abc") {
		t.Fatalf("real tokens are not simulated")
	}
}
