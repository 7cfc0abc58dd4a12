package device

import (
	"context"
	"fmt"
)

// GetSettings returns the runtime notification settings.
// The settings table holds a single row seeded by the initial migration.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (*Settings, error) {
	var (
		s                                              Settings
		ntfyEnabled, notifyNew, notifyReturn, notifyLeave int
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT ntfy_enabled, ntfy_topic, notify_new_device,
			notify_watched_return, notify_watched_leave,
			watched_return_minutes, watched_absence_minutes
		FROM settings
		WHERE id = 1`,
	).Scan(
		&ntfyEnabled, &s.NtfyTopic, &notifyNew,
		&notifyReturn, &notifyLeave,
		&s.WatchedReturnMinutes, &s.WatchedAbsenceMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}

	s.NtfyEnabled = ntfyEnabled != 0
	s.NotifyNewDevice = notifyNew != 0
	s.NotifyWatchedReturn = notifyReturn != 0
	s.NotifyWatchedLeave = notifyLeave != 0
	return &s, nil
}

// UpdateSettings replaces the runtime notification settings.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, settings *Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings
		SET ntfy_enabled = ?,
			ntfy_topic = ?,
			notify_new_device = ?,
			notify_watched_return = ?,
			notify_watched_leave = ?,
			watched_return_minutes = ?,
			watched_absence_minutes = ?
		WHERE id = 1`,
		boolToInt(settings.NtfyEnabled),
		settings.NtfyTopic,
		boolToInt(settings.NotifyNewDevice),
		boolToInt(settings.NotifyWatchedReturn),
		boolToInt(settings.NotifyWatchedLeave),
		settings.WatchedReturnMinutes,
		settings.WatchedAbsenceMinutes,
	)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}
