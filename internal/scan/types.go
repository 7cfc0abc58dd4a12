package scan

import "context"

// Backend identifiers recorded on each scanned device.
const (
	BackendBLE     = "ble"
	BackendClassic = "classic"
)

// ScannedDevice is a device observed during one scan cycle.
type ScannedDevice struct {
	// MAC is the device address: a hardware address, or a proxy UUID
	// on platforms that hide hardware addresses.
	MAC string

	// Name is the advertised or inquired device name, empty if the
	// device did not report one.
	Name string

	// RSSI is the received signal strength in dBm. The classic
	// backend cannot measure it and reports a fixed placeholder.
	RSSI int

	// Vendor is the manufacturer resolved from the address prefix,
	// nil when resolution was not possible.
	Vendor *string

	// ServiceUUIDs are the advertised BLE service UUIDs, used for
	// device fingerprinting. Always empty for classic devices.
	ServiceUUIDs []string

	// Backend names which scanner observed the device.
	Backend string

	// DeviceClass is the classic Bluetooth class of device, nil for
	// BLE devices.
	DeviceClass *uint32
}

// Backend discovers devices over one Bluetooth transport.
type Backend interface {
	// Name identifies the backend in logs and merged results.
	Name() string

	// Scan runs one discovery pass and returns everything observed.
	Scan(ctx context.Context) ([]ScannedDevice, error)
}

// VendorResolver maps a device address to its manufacturer.
type VendorResolver interface {
	Resolve(ctx context.Context, address string) *string
}
