package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeFormat is the timestamp layout stored in the database. It matches
// SQLite's datetime() output so timestamps can be compared against
// datetime('now', ...) expressions in queries.
const timeFormat = "2006-01-02 15:04:05"

// defaultHistoryDays is used when a caller passes a non-positive window.
const defaultHistoryDays = 30

// Repository defines the persistence operations consumed by the daemon,
// the notification gateway, and the control plane.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByMAC retrieves a device by its hardware address.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// GetAllDevices retrieves all devices ordered by most recently seen.
	// When includeIgnored is false, ignored devices are filtered out.
	GetAllDevices(ctx context.Context, includeIgnored bool) ([]Device, error)

	// GetWatchedDevices retrieves all devices flagged for presence alerts.
	GetWatchedDevices(ctx context.Context) ([]Device, error)

	// Upsert creates or updates a device and appends a sighting.
	// Existing devices get last_seen refreshed and total_sightings
	// incremented. Returns the stored device and whether it was new.
	Upsert(ctx context.Context, params UpsertParams) (*Device, bool, error)

	// SetFriendlyName sets the operator-assigned label for a device.
	SetFriendlyName(ctx context.Context, mac, name string) error

	// SetIgnored sets whether a device is hidden from default listings.
	SetIgnored(ctx context.Context, mac string, ignored bool) error

	// SetWatched sets whether a device generates presence alerts.
	SetWatched(ctx context.Context, mac string, watched bool) error

	// GetSightings retrieves sightings for a device within the last
	// N days, most recent first.
	GetSightings(ctx context.Context, mac string, days int) ([]Sighting, error)

	// GetHourlyDistribution returns sighting counts keyed by hour of
	// day (0-23) over the last N days.
	GetHourlyDistribution(ctx context.Context, mac string, days int) (map[int]int, error)

	// GetDailyDistribution returns sighting counts keyed by day of
	// week (0=Monday .. 6=Sunday) over the last N days.
	GetDailyDistribution(ctx context.Context, mac string, days int) (map[int]int, error)

	// CleanupOldSightings deletes sightings older than N days and
	// returns the number deleted.
	CleanupOldSightings(ctx context.Context, days int) (int64, error)

	// GetSettings returns the runtime notification settings.
	GetSettings(ctx context.Context) (*Settings, error)

	// UpdateSettings replaces the runtime notification settings.
	UpdateSettings(ctx context.Context, settings *Settings) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// NormalizeMAC canonicalizes a hardware address for storage and lookup.
// Colon-separated addresses are upper-cased; CoreBluetooth proxy UUIDs
// are upper-cased too, which keeps the comparison case-insensitive for
// both forms.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.TrimSpace(mac))
}

// GetByMAC retrieves a device by its hardware address.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	query := `
		SELECT mac, vendor, friendly_name, device_type, ignored, watched,
			first_seen, last_seen, total_sightings
		FROM devices
		WHERE mac = ?`

	row := r.db.QueryRowContext(ctx, query, NormalizeMAC(mac))
	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return dev, nil
}

// GetAllDevices retrieves all devices ordered by most recently seen.
func (r *SQLiteRepository) GetAllDevices(ctx context.Context, includeIgnored bool) ([]Device, error) {
	query := `
		SELECT mac, vendor, friendly_name, device_type, ignored, watched,
			first_seen, last_seen, total_sightings
		FROM devices`
	if !includeIgnored {
		query += ` WHERE ignored = 0`
	}
	query += ` ORDER BY last_seen DESC`

	return r.queryDevices(ctx, query)
}

// GetWatchedDevices retrieves all devices flagged for presence alerts.
func (r *SQLiteRepository) GetWatchedDevices(ctx context.Context) ([]Device, error) {
	query := `
		SELECT mac, vendor, friendly_name, device_type, ignored, watched,
			first_seen, last_seen, total_sightings
		FROM devices
		WHERE watched = 1
		ORDER BY last_seen DESC`

	return r.queryDevices(ctx, query)
}

// Upsert creates or updates a device and appends a sighting.
//
// The whole operation runs in one transaction so a crash mid-cycle can
// never leave a sighting without its device row (or a bumped sighting
// count without the sighting).
func (r *SQLiteRepository) Upsert(ctx context.Context, params UpsertParams) (*Device, bool, error) {
	mac := NormalizeMAC(params.MAC)
	if mac == "" {
		return nil, false, ErrInvalidMAC
	}

	deviceType := params.DeviceType
	if deviceType == "" {
		deviceType = "unknown"
	}

	now := time.Now().UTC().Format(timeFormat)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices WHERE mac = ?", mac).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("checking device existence: %w", err)
	}
	isNew := exists == 0

	if isNew {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO devices (mac, vendor, device_type, first_seen, last_seen, total_sightings)
			VALUES (?, ?, ?, ?, ?, 1)`,
			mac, params.Vendor, deviceType, now, now,
		)
		if err != nil {
			return nil, false, fmt.Errorf("inserting device: %w", err)
		}
	} else {
		// Backfill vendor and upgrade an unknown classification; never
		// downgrade a known one to unknown because a later scan carried
		// less information (e.g. the classic backend saw it first).
		_, err = tx.ExecContext(ctx, `
			UPDATE devices
			SET last_seen = ?,
				total_sightings = total_sightings + 1,
				vendor = COALESCE(vendor, ?),
				device_type = CASE
					WHEN device_type = 'unknown' AND ? != 'unknown' THEN ?
					ELSE device_type
				END
			WHERE mac = ?`,
			now, params.Vendor, deviceType, deviceType, mac,
		)
		if err != nil {
			return nil, false, fmt.Errorf("updating device: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sightings (mac, timestamp, rssi) VALUES (?, ?, ?)",
		mac, now, params.RSSI,
	)
	if err != nil {
		return nil, false, fmt.Errorf("recording sighting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing upsert: %w", err)
	}

	dev, err := r.GetByMAC(ctx, mac)
	if err != nil {
		return nil, false, err
	}
	return dev, isNew, nil
}

// SetFriendlyName sets the operator-assigned label for a device.
func (r *SQLiteRepository) SetFriendlyName(ctx context.Context, mac, name string) error {
	return r.updateDeviceField(ctx, "friendly_name", name, mac)
}

// SetIgnored sets whether a device is hidden from default listings.
func (r *SQLiteRepository) SetIgnored(ctx context.Context, mac string, ignored bool) error {
	return r.updateDeviceField(ctx, "ignored", boolToInt(ignored), mac)
}

// SetWatched sets whether a device generates presence alerts.
func (r *SQLiteRepository) SetWatched(ctx context.Context, mac string, watched bool) error {
	return r.updateDeviceField(ctx, "watched", boolToInt(watched), mac)
}

// updateDeviceField updates a single column of a device row.
// The column name is always a compile-time constant from the callers
// above, never user input.
func (r *SQLiteRepository) updateDeviceField(ctx context.Context, column string, value any, mac string) error {
	query := fmt.Sprintf("UPDATE devices SET %s = ? WHERE mac = ?", column) //nolint:gosec // column is a constant
	result, err := r.db.ExecContext(ctx, query, value, NormalizeMAC(mac))
	if err != nil {
		return fmt.Errorf("updating %s: %w", column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// GetSightings retrieves sightings for a device within the last N days.
func (r *SQLiteRepository) GetSightings(ctx context.Context, mac string, days int) ([]Sighting, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mac, timestamp, rssi
		FROM sightings
		WHERE mac = ? AND timestamp > datetime('now', ?)
		ORDER BY timestamp DESC`,
		NormalizeMAC(mac), fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sightings: %w", err)
	}
	defer rows.Close()

	var sightings []Sighting
	for rows.Next() {
		var s Sighting
		var ts string
		if err := rows.Scan(&s.ID, &s.MAC, &ts, &s.RSSI); err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		s.Timestamp = parseTime(ts)
		sightings = append(sightings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sightings: %w", err)
	}
	return sightings, nil
}

// GetHourlyDistribution returns sighting counts keyed by hour of day.
func (r *SQLiteRepository) GetHourlyDistribution(ctx context.Context, mac string, days int) (map[int]int, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%H', timestamp) AS INTEGER) AS hour, COUNT(*)
		FROM sightings
		WHERE mac = ? AND timestamp > datetime('now', ?)
		GROUP BY hour
		ORDER BY hour`,
		NormalizeMAC(mac), fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, fmt.Errorf("querying hourly distribution: %w", err)
	}
	defer rows.Close()

	return scanDistribution(rows, func(key int) int { return key })
}

// GetDailyDistribution returns sighting counts keyed by day of week.
// SQLite's %w uses 0=Sunday; this converts to 0=Monday.
func (r *SQLiteRepository) GetDailyDistribution(ctx context.Context, mac string, days int) (map[int]int, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%w', timestamp) AS INTEGER) AS day, COUNT(*)
		FROM sightings
		WHERE mac = ? AND timestamp > datetime('now', ?)
		GROUP BY day
		ORDER BY day`,
		NormalizeMAC(mac), fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, fmt.Errorf("querying daily distribution: %w", err)
	}
	defer rows.Close()

	const daysPerWeek = 7
	return scanDistribution(rows, func(key int) int { return (key - 1 + daysPerWeek) % daysPerWeek })
}

// CleanupOldSightings deletes sightings older than N days.
func (r *SQLiteRepository) CleanupOldSightings(ctx context.Context, days int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM sightings WHERE timestamp < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old sightings: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking delete result: %w", err)
	}
	return deleted, nil
}

// queryDevices executes a device query and scans all rows.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanDevice.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device row in column order.
func scanDevice(row rowScanner) (*Device, error) {
	var (
		dev              Device
		ignored, watched int
		firstSeen        string
		lastSeen         string
	)

	err := row.Scan(
		&dev.MAC, &dev.Vendor, &dev.FriendlyName, &dev.DeviceType,
		&ignored, &watched, &firstSeen, &lastSeen, &dev.TotalSightings,
	)
	if err != nil {
		return nil, err
	}

	dev.Ignored = ignored != 0
	dev.Watched = watched != 0
	dev.FirstSeen = parseTime(firstSeen)
	dev.LastSeen = parseTime(lastSeen)
	return &dev, nil
}

// scanDistribution scans (key, count) rows into a map, remapping keys.
func scanDistribution(rows *sql.Rows, remap func(int) int) (map[int]int, error) {
	dist := make(map[int]int)
	for rows.Next() {
		var key, count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning distribution row: %w", err)
		}
		dist[remap(key)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distribution: %w", err)
	}
	return dist, nil
}

// parseTime parses a stored timestamp. The format is controlled by this
// package, so parse failures yield the zero time rather than an error.
func parseTime(value string) time.Time {
	t, err := time.ParseInLocation(timeFormat, value, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// boolToInt converts a bool to SQLite's 0/1 representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
