package device

import "time"

// Device is the persistent record for one hardware address.
// This matches the database schema in migrations/20260311_100000_initial_schema.up.sql.
type Device struct {
	// MAC is the normalized (upper-case) hardware address. On macOS hosts
	// this may instead be a CoreBluetooth proxy UUID.
	MAC string `json:"mac"`

	// Vendor is the resolved manufacturer name, if any.
	Vendor *string `json:"vendor,omitempty"`

	// FriendlyName is an operator-assigned label.
	FriendlyName *string `json:"friendly_name,omitempty"`

	// DeviceType is the classified type (phone, laptop, audio, ...).
	DeviceType string `json:"device_type"`

	// Ignored devices are hidden from default listings.
	Ignored bool `json:"ignored"`

	// Watched devices generate presence-transition notifications.
	Watched bool `json:"watched"`

	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	TotalSightings int       `json:"total_sightings"`
}

// DisplayName returns the best human-readable name for the device:
// friendly name, then vendor, then the raw address.
func (d *Device) DisplayName() string {
	if d.FriendlyName != nil && *d.FriendlyName != "" {
		return *d.FriendlyName
	}
	if d.Vendor != nil && *d.Vendor != "" {
		return *d.Vendor
	}
	return d.MAC
}

// Sighting is one observation of a device during a scan cycle.
type Sighting struct {
	ID        int64     `json:"id"`
	MAC       string    `json:"mac"`
	Timestamp time.Time `json:"timestamp"`
	RSSI      *int      `json:"rssi,omitempty"`
}

// Settings holds the runtime notification preferences.
// Stored as a single row and mutated through the control plane.
type Settings struct {
	// NtfyEnabled is the master switch for push notifications.
	NtfyEnabled bool `json:"ntfy_enabled"`

	// NtfyTopic is the topic alerts are published to. Notifications
	// are a no-op when empty even if enabled.
	NtfyTopic string `json:"ntfy_topic"`

	// NotifyNewDevice fires an alert the first time an address is seen.
	NotifyNewDevice bool `json:"notify_new_device"`

	// NotifyWatchedReturn fires when a watched device reappears after
	// at least WatchedReturnMinutes of absence.
	NotifyWatchedReturn bool `json:"notify_watched_return"`

	// NotifyWatchedLeave fires when a watched device has been absent
	// for at least WatchedAbsenceMinutes.
	NotifyWatchedLeave bool `json:"notify_watched_leave"`

	WatchedReturnMinutes  int `json:"watched_return_minutes"`
	WatchedAbsenceMinutes int `json:"watched_absence_minutes"`
}

// UpsertParams carries the per-scan data recorded on each sighting.
type UpsertParams struct {
	// MAC is the normalized hardware address. Required.
	MAC string

	// Vendor is the resolved manufacturer, recorded on first insert
	// and backfilled if the stored record has none.
	Vendor *string

	// RSSI is the observed signal strength, if the backend reports one.
	RSSI *int

	// DeviceType is the classified type for this observation. Recorded
	// on first insert and upgraded later if a previously unknown device
	// classifies to something more specific.
	DeviceType string
}
