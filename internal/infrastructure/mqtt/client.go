package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
)

// Logger is the subset of logging the client needs. Satisfied by
// logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Handlers run in paho's goroutines and should not block for long.
// A returned error is logged but does not affect acknowledgment.
type MessageHandler func(topic string, payload []byte) error

// subscription is a tracked topic subscription, replayed after a
// reconnect.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// Client is the daemon's connection to the MQTT broker. It publishes
// retained presence state and scan events, carries an online/offline
// LWT on bluehood/system/status, and reconnects automatically with
// backoff from config.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Subscriptions are restored automatically on reconnection.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	subMu         sync.RWMutex
	subscriptions map[string]subscription

	// stateMu guards connection state and the event callbacks.
	stateMu      sync.RWMutex
	connected    bool
	onConnect    func()
	onDisconnect func(err error)

	loggerMu sync.RWMutex
	logger   Logger
}

// Connect dials the broker configured in cfg and returns a ready
// client. The connection carries an LWT so subscribers can tell a
// crash from a graceful shutdown; on every (re)connect the client
// republishes its retained online status.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial connection fails within the timeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := buildClientOptions(cfg)

	c := &Client{
		cfg:           cfg,
		options:       opts,
		subscriptions: make(map[string]subscription),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark connected here
	// so IsConnected holds immediately after Connect returns.
	c.stateMu.Lock()
	c.connected = true
	c.stateMu.Unlock()

	return c, nil
}

// handleConnect runs on initial connect and every reconnect.
func (c *Client) handleConnect() {
	c.stateMu.Lock()
	c.connected = true
	callback := c.onConnect
	c.stateMu.Unlock()

	c.restoreSubscriptions()
	c.publishStatus(statusOnline, "")

	if callback != nil {
		callback()
	}
}

// handleDisconnect runs when the connection drops.
func (c *Client) handleDisconnect(err error) {
	c.stateMu.Lock()
	c.connected = false
	callback := c.onDisconnect
	c.stateMu.Unlock()

	if callback != nil {
		callback(err)
	}
}

// restoreSubscriptions replays tracked subscriptions after a reconnect.
// Errors are ignored here; paho retries the connection itself and this
// runs again on the next successful connect.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// publishStatus publishes a retained lifecycle status message on the
// system status topic.
func (c *Client) publishStatus(status, reason string) {
	payload := statusPayload(status, c.cfg.Broker.ClientID, reason)
	token := c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, payload)
	token.WaitTimeout(defaultPublishTimeout)
}

// Close publishes a graceful offline status (distinct from the LWT's
// crash reason) and disconnects, giving pending operations a short
// quiesce window.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		c.publishStatus(statusOffline, reasonGracefulShutdown)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.stateMu.Lock()
	c.connected = false
	c.stateMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// SetOnConnect sets a callback invoked on initial connect and on every
// reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.stateMu.Lock()
	c.onConnect = callback
	c.stateMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
// The error describes why.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.stateMu.Lock()
	c.onDisconnect = callback
	c.stateMu.Unlock()
}

// SetLogger sets a logger for handler errors and panics. Without one
// those are dropped silently.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler adapts a MessageHandler to paho's signature, adding
// panic recovery and error logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
