// Package influxdb provides InfluxDB connectivity for the Bluehood
// daemon.
//
// It wraps the official influxdb-client-go v2 library with patterns
// for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Per-device signal strength (RSSI) over time
//   - Scan cycle statistics (device counts per backend, cycle duration)
//   - Presence transitions for watched devices
//
// The SQLite catalogue stays the source of truth for devices and
// sightings; InfluxDB is an optional sink for dashboards (Grafana)
// that want high-resolution history without hammering the catalogue.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "bluehood",
//	    Bucket: "presence",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSignal("AA:BB:CC:DD:EE:FF", -52, "ble")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a
// callback. Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval). This reduces network overhead when many devices are
// in range.
package influxdb
