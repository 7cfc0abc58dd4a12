package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "bluehood-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Validation (no broker required)
// =============================================================================

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client = %v", err)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	c := &Client{}
	if err := c.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(\"\") = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	c := &Client{}
	if err := c.Publish("bluehood/event/x", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish(qos=3) = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	c := &Client{}
	payload := make([]byte, maxPayloadSize+1)
	if err := c.Publish("bluehood/event/x", payload, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized Publish = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	c := &Client{}
	err := c.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	c := &Client{}
	err := c.Subscribe("bluehood/presence/+", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe(qos=3) = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	c := &Client{}
	err := c.Subscribe("bluehood/presence/+", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) = %v, want ErrSubscribeFailed", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	c := &Client{}
	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(\"\") = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscriptionCountEmpty(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	if n := c.SubscriptionCount(); n != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", n)
	}
	if c.HasSubscription("bluehood/presence/+") {
		t.Error("HasSubscription() = true for empty client")
	}
}

// =============================================================================
// Topic Builders
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "PresenceState",
			builder: func() string {
				return Topics{}.PresenceState("AA:BB:CC:DD:EE:FF")
			},
			expected: "bluehood/presence/AA:BB:CC:DD:EE:FF",
		},
		{
			name: "AllPresenceStates",
			builder: func() string {
				return Topics{}.AllPresenceStates()
			},
			expected: "bluehood/presence/+",
		},
		{
			name: "Event",
			builder: func() string {
				return Topics{}.Event("scan_complete")
			},
			expected: "bluehood/event/scan_complete",
		},
		{
			name: "AllEvents",
			builder: func() string {
				return Topics{}.AllEvents()
			},
			expected: "bluehood/event/+",
		},
		{
			name: "Alert",
			builder: func() string {
				return Topics{}.Alert("device_new")
			},
			expected: "bluehood/alert/device_new",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "bluehood/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.builder(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Status Payloads
// =============================================================================

func TestStatusPayloads(t *testing.T) {
	for name, payload := range map[string]string{
		"online":  statusPayload(statusOnline, "bluehood-test", ""),
		"offline": statusPayload(statusOffline, "bluehood-test", reasonGracefulShutdown),
	} {
		t.Run(name, func(t *testing.T) {
			var decoded map[string]string
			if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			if decoded["status"] != name {
				t.Errorf("status = %q, want %q", decoded["status"], name)
			}
			if decoded["client_id"] != "bluehood-test" {
				t.Errorf("client_id = %q", decoded["client_id"])
			}
			if decoded["timestamp"] == "" {
				t.Error("timestamp missing")
			}
		})
	}

	t.Run("reason field", func(t *testing.T) {
		if !strings.Contains(statusPayload(statusOffline, "x", reasonGracefulShutdown), "graceful_shutdown") {
			t.Error("graceful offline payload missing reason")
		}
		if strings.Contains(statusPayload(statusOnline, "x", ""), "reason") {
			t.Error("online payload should not carry a reason")
		}
	})
}

// =============================================================================
// Option Building
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "bluehood"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("unexpected broker servers: %v", opts.Servers)
	}
	if opts.ClientID != "bluehood-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "bluehood" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect disabled")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].Scheme != "ssl" {
		t.Errorf("TLS broker should use ssl scheme: %v", opts.Servers)
	}
	if opts.TLSConfig == nil {
		t.Error("TLS config not set")
	}
}

func TestBuildClientOptionsLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if !opts.WillEnabled {
		t.Fatal("LWT not enabled")
	}
	if opts.WillTopic != "bluehood/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !strings.Contains(string(opts.WillPayload), "unexpected_disconnect") {
		t.Errorf("WillPayload = %q", opts.WillPayload)
	}
	if !opts.WillRetained {
		t.Error("LWT should be retained")
	}
}
