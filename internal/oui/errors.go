package oui

import "errors"

var (
	// ErrNoPrefix indicates the address is too short to contain an OUI.
	ErrNoPrefix = errors.New("oui: address has no prefix")

	// ErrDatabaseUnavailable indicates the local registry file could
	// not be read or downloaded.
	ErrDatabaseUnavailable = errors.New("oui: local database unavailable")
)
