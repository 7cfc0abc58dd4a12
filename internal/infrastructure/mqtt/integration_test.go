//go:build integration

package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"
)

// Integration tests for broker-dependent behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//
//	go test -tags=integration -v ./internal/infrastructure/mqtt/...

func connectTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIntegration_Connect(t *testing.T) {
	client := connectTestClient(t)
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
}

func TestIntegration_PublishSubscribeRoundtrip(t *testing.T) {
	client := connectTestClient(t)

	var (
		mu       sync.Mutex
		received []byte
	)
	done := make(chan struct{})

	topic := Topics{}.Event("scan_complete")
	err := client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		mu.Lock()
		received = payload
		mu.Unlock()
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := []byte(`{"event":"scan_complete","count":3}`)
	if err := client.Publish(topic, want, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("message not received within timeout")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(received) != string(want) {
		t.Errorf("received %q, want %q", received, want)
	}
}

func TestIntegration_PresenceWildcard(t *testing.T) {
	client := connectTestClient(t)

	var count int
	var mu sync.Mutex
	err := client.Subscribe(Topics{}.AllPresenceStates(), 1, func(string, []byte) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for _, mac := range []string{"AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66"} {
		if err := client.Publish(Topics{}.PresenceState(mac), []byte(`{"present":true}`), 1, false); err != nil {
			t.Fatalf("Publish(%s) error = %v", mac, err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := count
		mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("only %d of 2 wildcard messages received", n)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestIntegration_SubscriptionTracking(t *testing.T) {
	client := connectTestClient(t)

	topic := Topics{}.AllEvents()
	if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(topic) {
		t.Error("subscription not tracked")
	}
	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topic) {
		t.Error("subscription still tracked after unsubscribe")
	}
}
