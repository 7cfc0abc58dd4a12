package device

import "errors"

// Domain-specific errors for catalogue operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceNotFound is returned when a device does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidMAC is returned when an empty address is given.
	ErrInvalidMAC = errors.New("device: address is required")
)
