package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/bluehood-core/internal/classify"
	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/bluehood-core/internal/scan"
)

// topics builds the MQTT topic names for presence and event publishes.
var topics mqtt.Topics

// Status represents the daemon lifecycle state.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// absenceSweepInterval is how often watched devices are checked for
// absence alerts.
const absenceSweepInterval = time.Minute

// retentionSweepInterval is how often old sightings are pruned.
const retentionSweepInterval = 24 * time.Hour

// Scanner is the interface the daemon needs from the scan package.
type Scanner interface {
	Scan(ctx context.Context) []scan.ScannedDevice
}

// Gateway is the interface the daemon needs from the notify package.
type Gateway interface {
	Start(ctx context.Context) error
	OnDeviceSeen(ctx context.Context, dev *device.Device, isNew bool)
	CheckAbsentDevices(ctx context.Context)
	ReloadSettings(ctx context.Context) error
	UpdateWatchedState(mac string, watched bool)
}

// Publisher is the interface for the optional MQTT presence bridge.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// Metrics is the interface for the optional time-series sink.
type Metrics interface {
	WriteSignal(mac string, rssi int, backend string)
	WriteScanCycle(deviceCount, bleCount, classicCount int, duration time.Duration)
}

// EventSink receives every event fanned out to control-plane clients,
// letting an HTTP mirror rebroadcast them over WebSocket.
type EventSink func(payload []byte)

// Daemon coordinates the scan loop, the notification sweeps, and the
// control-plane socket server.
//
// Thread Safety: Start and Stop are safe to call from any goroutine.
// All other state is guarded internally.
type Daemon struct {
	cfg     *config.Config
	store   device.Repository
	scanner Scanner
	gateway Gateway
	logger  *logging.Logger

	publisher Publisher
	metrics   Metrics
	sink      EventSink

	mu     sync.RWMutex
	status Status
	cancel context.CancelFunc
	wg     sync.WaitGroup

	server *ipcServer
}

// New creates a daemon wired to its collaborators. The MQTT publisher,
// metrics sink, and event sink are optional and set separately.
func New(cfg *config.Config, store device.Repository, scanner Scanner, gateway Gateway) *Daemon {
	return &Daemon{
		cfg:     cfg,
		store:   store,
		scanner: scanner,
		gateway: gateway,
		logger:  logging.Default(),
		status:  StatusStopped,
	}
}

// SetLogger sets the logger used for daemon output.
func (d *Daemon) SetLogger(logger *logging.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// SetPublisher enables MQTT presence publishing. Must be called before Start.
func (d *Daemon) SetPublisher(p Publisher) {
	d.publisher = p
}

// SetMetrics enables time-series metric writes. Must be called before Start.
func (d *Daemon) SetMetrics(m Metrics) {
	d.metrics = m
}

// SetEventSink registers a mirror for fanout events. Must be called
// before Start.
func (d *Daemon) SetEventSink(sink EventSink) {
	d.sink = sink
}

// Status returns the current lifecycle state.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Running reports whether the daemon is in the running state.
func (d *Daemon) Running() bool {
	return d.Status() == StatusRunning
}

// ClientCount returns the number of connected control-plane clients.
func (d *Daemon) ClientCount() int {
	if d.server == nil {
		return 0
	}
	return d.server.clientCount()
}

// Start seeds the gateway's watch state, binds the control-plane socket,
// and launches the scan, absence, and retention loops.
//
// Returns an error if the gateway cannot read watch state or the socket
// cannot be bound; both are fatal at startup.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.status == StatusRunning {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	if err := d.gateway.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("starting notification gateway: %w", err)
	}

	server, err := newIPCServer(d, d.cfg.Socket)
	if err != nil {
		cancel()
		return fmt.Errorf("starting control plane: %w", err)
	}
	d.server = server

	d.mu.Lock()
	d.status = StatusRunning
	d.mu.Unlock()

	d.wg.Add(4)
	go d.acceptLoop(runCtx)
	go d.scanLoop(runCtx)
	go d.absenceLoop(runCtx)
	go d.retentionLoop(runCtx)

	d.logger.Info("daemon started",
		"socket", d.cfg.Socket.Path,
		"scan_interval", d.cfg.ScanInterval().String(),
	)

	return nil
}

// Stop shuts the daemon down: the loops wind down, client connections
// are closed, and the socket file is removed last.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if d.status != StatusRunning {
		d.mu.Unlock()
		return
	}
	d.status = StatusStopped
	cancel := d.cancel
	d.mu.Unlock()

	d.logger.Info("stopping daemon")

	cancel()
	if d.server != nil {
		d.server.closeClients()
		d.server.closeListener()
	}
	d.wg.Wait()
	if d.server != nil {
		d.server.removeSocket()
	}

	d.logger.Info("daemon stopped")
}

// acceptLoop serves the control-plane socket until shutdown.
func (d *Daemon) acceptLoop(ctx context.Context) {
	defer d.wg.Done()
	d.server.serve(ctx, &d.wg)
}

// scanLoop drives one scan cycle per tick. The first cycle runs
// immediately so the daemon is useful from the start.
func (d *Daemon) scanLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.ScanInterval())
	defer ticker.Stop()

	d.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// absenceLoop sweeps watched devices for absence alerts.
func (d *Daemon) absenceLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(absenceSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.gateway.CheckAbsentDevices(ctx)
		}
	}
}

// retentionLoop prunes sightings past the retention window, once at
// startup and then daily.
func (d *Daemon) retentionLoop(ctx context.Context) {
	defer d.wg.Done()

	days := d.cfg.Scan.SightingRetentionDays
	if days <= 0 {
		return
	}

	d.pruneSightings(ctx, days)

	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pruneSightings(ctx, days)
		}
	}
}

func (d *Daemon) pruneSightings(ctx context.Context, days int) {
	deleted, err := d.store.CleanupOldSightings(ctx, days)
	if err != nil {
		d.logger.Error("sighting cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		d.logger.Info("pruned old sightings", "deleted", deleted, "retention_days", days)
	}
}

// runCycle performs one full scan cycle: discover, classify, persist,
// notify, publish, fan out. Every failure is logged and contained; a
// failed cycle never stops the loop. A cycle already in progress runs
// to completion even if shutdown begins mid-cycle.
func (d *Daemon) runCycle(ctx context.Context) {
	cycleCtx := context.WithoutCancel(ctx)

	started := time.Now()
	devices := d.scanner.Scan(cycleCtx)

	bleCount := 0
	classicCount := 0
	for i := range devices {
		sd := devices[i]
		switch sd.Backend {
		case scan.BackendBLE:
			bleCount++
		case scan.BackendClassic:
			classicCount++
		}

		stored, isNew, err := d.persistDevice(cycleCtx, sd)
		if err != nil {
			d.logger.Error("persisting device failed", "mac", sd.MAC, "error", err)
			continue
		}

		d.gateway.OnDeviceSeen(cycleCtx, stored, isNew)
		d.publishPresence(stored, sd)

		if d.metrics != nil {
			d.metrics.WriteSignal(stored.MAC, sd.RSSI, sd.Backend)
		}
	}

	duration := time.Since(started)

	if d.metrics != nil {
		d.metrics.WriteScanCycle(len(devices), bleCount, classicCount, duration)
	}

	d.publishEvent("scan_complete", map[string]any{
		"count":       len(devices),
		"duration_ms": duration.Milliseconds(),
	})
	d.fanout(scanCompleteEvent{Event: "scan_complete", Count: len(devices)})

	d.logger.Debug("scan cycle complete",
		"devices", len(devices),
		"ble", bleCount,
		"classic", classicCount,
		"duration_ms", duration.Milliseconds(),
	)
}

// persistDevice classifies one observation and upserts it.
func (d *Daemon) persistDevice(ctx context.Context, sd scan.ScannedDevice) (*device.Device, bool, error) {
	vendor := ""
	if sd.Vendor != nil {
		vendor = *sd.Vendor
	}
	deviceType := classify.Classify(classify.Evidence{
		Vendor:       vendor,
		Name:         sd.Name,
		ServiceUUIDs: sd.ServiceUUIDs,
		DeviceClass:  sd.DeviceClass,
	})

	rssi := sd.RSSI
	return d.store.Upsert(ctx, device.UpsertParams{
		MAC:        sd.MAC,
		Vendor:     sd.Vendor,
		RSSI:       &rssi,
		DeviceType: deviceType,
	})
}

// publishPresence publishes retained per-device state for smart-home
// consumers. No-op without a publisher.
func (d *Daemon) publishPresence(dev *device.Device, sd scan.ScannedDevice) {
	if d.publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"mac":         dev.MAC,
		"name":        dev.DisplayName(),
		"vendor":      dev.Vendor,
		"device_type": dev.DeviceType,
		"rssi":        sd.RSSI,
		"backend":     sd.Backend,
		"last_seen":   dev.LastSeen.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := d.publisher.PublishRetained(topics.PresenceState(dev.MAC), payload); err != nil {
		d.logger.Debug("presence publish failed", "mac", dev.MAC, "error", err)
	}
}

// publishEvent publishes a cycle-level event over MQTT. No-op without
// a publisher.
func (d *Daemon) publishEvent(kind string, body map[string]any) {
	if d.publisher == nil {
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return
	}

	if err := d.publisher.Publish(topics.Event(kind), payload, byte(d.cfg.MQTT.QoS), false); err != nil {
		d.logger.Debug("event publish failed", "event", kind, "error", err)
	}
}

// scanCompleteEvent is the fanout message sent to every control-plane
// client after each cycle.
type scanCompleteEvent struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// fanout delivers an event to every connected client and the event sink.
func (d *Daemon) fanout(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if d.server != nil {
		d.server.broadcast(payload)
	}
	if d.sink != nil {
		d.sink(payload)
	}
}
