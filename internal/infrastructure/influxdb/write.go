package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSignal records one RSSI sample for a device.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - mac: Device address (tag, low cardinality within one home)
//   - rssi: Received signal strength in dBm
//   - backend: Which scanner observed it ("ble" or "classic")
//
// Example:
//
//	client.WriteSignal("AA:BB:CC:DD:EE:FF", -52, "ble")
func (c *Client) WriteSignal(mac string, rssi int, backend string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal",
		map[string]string{
			"mac":     mac,
			"backend": backend,
		},
		map[string]interface{}{
			"rssi": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteScanCycle records the outcome of one scan cycle.
//
// Parameters:
//   - deviceCount: Unique devices after merging both backends
//   - bleCount: Devices the BLE backend reported
//   - classicCount: Devices the classic backend reported
//   - duration: Wall time the cycle took
func (c *Client) WriteScanCycle(deviceCount, bleCount, classicCount int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scan_cycle",
		nil,
		map[string]interface{}{
			"devices":     deviceCount,
			"ble":         bleCount,
			"classic":     classicCount,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresence records a presence transition for a watched device.
//
// Parameters:
//   - mac: Device address
//   - present: true on arrival or return, false on departure
func (c *Client) WritePresence(mac string, present bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"presence",
		map[string]string{
			"mac": mac,
		},
		map[string]interface{}{
			"present": present,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Example:
//
//	client.WritePoint("daemon_stats",
//	    map[string]string{"host": "pi-hallway"},
//	    map[string]interface{}{"clients": 2, "cache_size": 41})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., backfilled data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
