// Package device provides the device catalogue for Bluehood Core.
//
// The catalogue is the persistent record of every Bluetooth device the
// daemon has ever observed: identity (address, vendor, operator-assigned
// friendly name), classification, presence history (first/last seen,
// per-scan sightings with signal strength), and the operator flags that
// drive notifications (watched) and listing (ignored). It also owns the
// single-row settings table holding runtime notification preferences.
//
// # Key Types
//
//   - Device: the persistent record for one hardware address
//   - Sighting: one observation of a device during a scan cycle
//   - Settings: runtime notification preferences
//   - Repository: the persistence interface consumed by the daemon,
//     gateway, and control plane
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db.DB)
//	dev, isNew, err := repo.Upsert(ctx, device.UpsertParams{
//	    MAC:    "AA:BB:CC:DD:EE:FF",
//	    Vendor: "Apple, Inc.",
//	    RSSI:   intPtr(-62),
//	})
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use; the underlying pool is
// configured for SQLite's single-writer model by the database package.
package device
