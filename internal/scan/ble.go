package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/nerrad567/bluehood-core/internal/classify"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// BLEBackend scans for BLE advertisements using the platform's
// default adapter.
type BLEBackend struct {
	adapter  *bluetooth.Adapter
	duration time.Duration
	logger   *logging.Logger
	probes   []uuidProbe

	enableOnce sync.Once
	enableErr  error
}

// uuidProbe pairs a probeable service UUID with its canonical string
// form for the classifier.
type uuidProbe struct {
	uuid      bluetooth.UUID
	canonical string
}

// NewBLEBackend creates a BLE backend scanning for the given duration
// per cycle.
func NewBLEBackend(duration time.Duration) *BLEBackend {
	probes := make([]uuidProbe, 0, 32)
	for _, id := range classify.FingerprintUUID16s() {
		probes = append(probes, uuidProbe{
			uuid:      bluetooth.New16BitUUID(id),
			canonical: fmt.Sprintf("0000%04x-0000-1000-8000-00805f9b34fb", id),
		})
	}

	return &BLEBackend{
		adapter:  bluetooth.DefaultAdapter,
		duration: duration,
		logger:   logging.Default(),
		probes:   probes,
	}
}

// SetLogger sets the logger for scan diagnostics.
func (b *BLEBackend) SetLogger(logger *logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Name identifies the backend.
func (b *BLEBackend) Name() string { return BackendBLE }

// Scan listens for advertisements for the configured duration.
//
// Devices advertising more than once are reported once with the
// latest advertisement's data. Each cycle starts and stops the radio;
// the adapter itself is enabled only once per process.
func (b *BLEBackend) Scan(ctx context.Context) ([]ScannedDevice, error) {
	b.enableOnce.Do(func() {
		b.enableErr = b.adapter.Enable()
	})
	if b.enableErr != nil {
		return nil, fmt.Errorf("enabling BLE adapter: %w", b.enableErr)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]ScannedDevice)
	)

	scanCtx, cancel := context.WithTimeout(ctx, b.duration)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- b.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			addr := result.Address.String()
			if addr == "" {
				return
			}

			dev := ScannedDevice{
				MAC:     addr,
				Name:    result.LocalName(),
				RSSI:    int(result.RSSI),
				Backend: BackendBLE,
			}
			for _, probe := range b.probes {
				if result.HasServiceUUID(probe.uuid) {
					dev.ServiceUUIDs = append(dev.ServiceUUIDs, probe.canonical)
				}
			}

			mu.Lock()
			// Keep the advertised name if a later advertisement omits it.
			if prev, ok := results[addr]; ok && dev.Name == "" {
				dev.Name = prev.Name
			}
			results[addr] = dev
			mu.Unlock()
		})
	}()

	<-scanCtx.Done()
	if err := b.adapter.StopScan(); err != nil {
		b.logger.Debug("stopping BLE scan", "error", err)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("BLE scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	devices := make([]ScannedDevice, 0, len(results))
	for _, dev := range results {
		devices = append(devices, dev)
	}
	return devices, nil
}
