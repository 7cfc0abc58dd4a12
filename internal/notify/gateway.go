package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// absenceSuppression is how long a device's departure alert holds off
// a repeat alert for the same device.
const absenceSuppression = time.Hour

// Store provides the persisted state the gateway needs.
type Store interface {
	GetSettings(ctx context.Context) (*device.Settings, error)
	GetWatchedDevices(ctx context.Context) ([]device.Device, error)
}

// Gateway decides when a sighting or an absence warrants a push
// notification and hands qualifying events to the Sender.
//
// All methods are safe for concurrent use. The gateway holds the
// notification settings in memory; call ReloadSettings after the
// stored settings change.
type Gateway struct {
	store  Store
	sender Sender
	logger *logging.Logger
	now    func() time.Time

	mu             sync.Mutex
	settings       device.Settings
	lastSeen       map[string]time.Time
	absentNotified map[string]time.Time
}

// NewGateway creates a notification gateway. Call Start before use.
func NewGateway(store Store, sender Sender) *Gateway {
	return &Gateway{
		store:          store,
		sender:         sender,
		logger:         logging.Default(),
		now:            time.Now,
		lastSeen:       make(map[string]time.Time),
		absentNotified: make(map[string]time.Time),
	}
}

// SetLogger sets the logger for gateway activity.
func (g *Gateway) SetLogger(logger *logging.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Start loads settings and seeds the watched-device state from the
// store, so a daemon restart does not treat every watched device as
// freshly returned.
func (g *Gateway) Start(ctx context.Context) error {
	settings, err := g.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading notification settings: %w", err)
	}

	watched, err := g.store.GetWatchedDevices(ctx)
	if err != nil {
		return fmt.Errorf("loading watched devices: %w", err)
	}

	g.mu.Lock()
	g.settings = *settings
	for _, dev := range watched {
		if !dev.LastSeen.IsZero() {
			g.lastSeen[dev.MAC] = dev.LastSeen
		}
	}
	g.mu.Unlock()

	g.logger.Info("notification gateway started",
		"enabled", settings.NtfyEnabled, "watched", len(watched))
	return nil
}

// ReloadSettings refreshes the in-memory settings from the store.
func (g *Gateway) ReloadSettings(ctx context.Context) error {
	settings, err := g.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("reloading notification settings: %w", err)
	}

	g.mu.Lock()
	g.settings = *settings
	g.mu.Unlock()

	g.logger.Info("notification settings reloaded", "enabled", settings.NtfyEnabled)
	return nil
}

// OnDeviceSeen reacts to one device sighting.
//
// A brand new device produces a discovery alert and nothing else. A
// watched device that was last seen longer ago than the return
// threshold produces a return alert. In every case the watched
// device's last-seen time is brought current, which also clears its
// pending absence state.
func (g *Gateway) OnDeviceSeen(ctx context.Context, dev *device.Device, isNew bool) {
	g.mu.Lock()
	settings := g.settings
	if !settings.NtfyEnabled {
		g.mu.Unlock()
		return
	}

	now := g.now()

	if isNew && settings.NotifyNewDevice {
		g.mu.Unlock()
		g.send(ctx, settings, Notification{
			Title:    "New Device Detected",
			Message:  fmt.Sprintf("%s (%s)\nType: %s", dev.DisplayName(), dev.MAC, dev.DeviceType),
			Priority: 3,
			Tags:     []string{"new", "bluetooth"},
		})
		return
	}

	if !dev.Watched {
		g.mu.Unlock()
		return
	}

	prevSeen, hadPrev := g.lastSeen[dev.MAC]
	g.lastSeen[dev.MAC] = now
	delete(g.absentNotified, dev.MAC)
	g.mu.Unlock()

	if !hadPrev || !settings.NotifyWatchedReturn {
		return
	}

	minutesAbsent := now.Sub(prevSeen).Minutes()
	if minutesAbsent < float64(settings.WatchedReturnMinutes) {
		return
	}

	g.send(ctx, settings, Notification{
		Title:    "Watched Device Returned",
		Message:  fmt.Sprintf("%s is back\nWas absent for %s", dev.DisplayName(), FormatDuration(minutesAbsent)),
		Priority: 4,
		Tags:     []string{"loudspeaker", "bluetooth"},
	})
}

// CheckAbsentDevices alerts for watched devices gone longer than the
// absence threshold. Meant to run on a timer, roughly once a minute.
// Each absence alerts at most once per hour.
func (g *Gateway) CheckAbsentDevices(ctx context.Context) {
	g.mu.Lock()
	settings := g.settings
	g.mu.Unlock()

	if !settings.NtfyEnabled || !settings.NotifyWatchedLeave {
		return
	}

	watched, err := g.store.GetWatchedDevices(ctx)
	if err != nil {
		g.logger.Warn("absence check: loading watched devices", "error", err)
		return
	}

	now := g.now()
	threshold := time.Duration(settings.WatchedAbsenceMinutes) * time.Minute

	for _, dev := range watched {
		if dev.LastSeen.IsZero() || now.Sub(dev.LastSeen) < threshold {
			continue
		}

		g.mu.Lock()
		lastNotified, notified := g.absentNotified[dev.MAC]
		if notified && now.Sub(lastNotified) < absenceSuppression {
			g.mu.Unlock()
			continue
		}
		g.absentNotified[dev.MAC] = now
		g.mu.Unlock()

		minutesAbsent := now.Sub(dev.LastSeen).Minutes()
		g.send(ctx, settings, Notification{
			Title:    "Watched Device Left",
			Message:  fmt.Sprintf("%s hasn't been seen for %s", dev.DisplayName(), FormatDuration(minutesAbsent)),
			Priority: 3,
			Tags:     []string{"wave", "bluetooth"},
		})
	}
}

// UpdateWatchedState adjusts internal tracking when a device's
// watched flag changes, so an unwatched device cannot fire a stale
// return alert if it is watched again later.
func (g *Gateway) UpdateWatchedState(mac string, watched bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if watched {
		g.lastSeen[mac] = g.now()
	} else {
		delete(g.lastSeen, mac)
		delete(g.absentNotified, mac)
	}
}

// send delivers one notification if a topic is configured. Failures
// are already logged by the sender; the gateway only guards the
// configuration.
func (g *Gateway) send(ctx context.Context, settings device.Settings, n Notification) {
	if settings.NtfyTopic == "" {
		g.logger.Warn("notifications enabled but no topic configured")
		return
	}
	g.sender.Send(ctx, settings.NtfyTopic, n)
}
