// Package database opens and migrates the SQLite store behind Bluehood Core.
//
// The database holds the device registry, sighting history, and runtime
// settings. It is opened in WAL mode with a single writer connection,
// which is all a one-process daemon needs, and the file is chmodded to
// 0600 since MAC addresses are identifying data.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Schema changes ship as embedded migration files, one .up.sql and one
// .down.sql per version. Migrations are additive: new columns must be
// NULLABLE or carry a DEFAULT, and columns are never dropped or renamed,
// so an older binary can still read a newer database.
package database
