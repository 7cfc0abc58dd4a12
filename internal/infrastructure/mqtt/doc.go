// Package mqtt provides MQTT client connectivity for the Bluehood
// daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the daemon's outbound bridge into home automation: each scan
// cycle publishes retained per-device presence state and a scan event,
// and the notification gateway mirrors its alerts. Consumers such as
// Home Assistant subscribe; nothing commands the daemon over MQTT, so
// the control plane stays on the local unix socket.
//
// # Security Considerations
//
//   - TLS is required for brokers outside the local host
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.PresenceState("AA:BB:CC:DD:EE:FF")
//	client.PublishRetained(topic, []byte(`{"present":true,"rssi":-52}`))
package mqtt
