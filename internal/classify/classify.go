package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// proxyUUIDRe matches the 8-4-4-4-12 hex form macOS CoreBluetooth
// substitutes for real hardware addresses.
var proxyUUIDRe = regexp.MustCompile(
	`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}$`,
)

// IsProxyUUID reports whether an address is a macOS CoreBluetooth
// proxy UUID rather than a real MAC address. macOS hides hardware
// addresses from BLE scanners and hands out a per-device UUID instead.
func IsProxyUUID(address string) bool {
	return proxyUUIDRe.MatchString(address)
}

// IsRandomizedMAC reports whether a MAC address has the locally
// administered bit set, which modern devices use for address
// randomization. Proxy UUIDs always return false since the bit test
// does not apply to them.
func IsRandomizedMAC(mac string) bool {
	if IsProxyUUID(mac) {
		return false
	}
	first, _, ok := strings.Cut(mac, ":")
	if !ok {
		return false
	}
	octet, err := strconv.ParseUint(first, 16, 8)
	if err != nil {
		return false
	}
	return octet&0x02 != 0
}

// ByServiceUUIDs classifies a device from its advertised BLE service
// UUIDs. Returns the empty string when nothing matches.
func ByServiceUUIDs(serviceUUIDs []string) string {
	for _, uuid := range serviceUUIDs {
		normalized := strings.ReplaceAll(strings.ToLower(uuid), "-", "")
		for _, r := range serviceUUIDRules {
			if strings.Contains(normalized, r.pattern) {
				return r.deviceType
			}
		}
	}
	return ""
}

// ByDeviceClass classifies a device from its classic Bluetooth class
// of device. Returns the empty string when the major class is not
// mapped.
func ByDeviceClass(deviceClass uint32) string {
	major := (deviceClass >> 8) & 0x1F
	return deviceClassMajorMap[major]
}

// byName classifies a device from its advertised name.
func byName(name string) string {
	lower := strings.ToLower(name)
	for _, r := range nameRules {
		for _, pattern := range r.patterns {
			if strings.Contains(lower, pattern) {
				return r.deviceType
			}
		}
	}
	return ""
}

// byVendor classifies a device from its resolved vendor name.
func byVendor(vendor string) string {
	lower := strings.ToLower(vendor)
	for _, r := range vendorRules {
		if strings.Contains(lower, r.pattern) {
			return r.deviceType
		}
	}
	return ""
}

// Evidence carries the classification inputs collected during a scan.
// Any field may be zero when the backend did not observe it.
type Evidence struct {
	Vendor       string
	Name         string
	ServiceUUIDs []string
	DeviceClass  *uint32
}

// Classify assigns a device type from scan evidence.
//
// Signals are tried strongest first: service UUIDs, then the
// advertised name, then the classic device class, then the vendor.
// Returns TypeUnknown when no signal matches.
func Classify(ev Evidence) string {
	if t := ByServiceUUIDs(ev.ServiceUUIDs); t != "" {
		return t
	}
	if ev.Name != "" {
		if t := byName(ev.Name); t != "" {
			return t
		}
	}
	if ev.DeviceClass != nil {
		if t := ByDeviceClass(*ev.DeviceClass); t != "" {
			return t
		}
	}
	if ev.Vendor != "" {
		if t := byVendor(ev.Vendor); t != "" {
			return t
		}
	}
	return TypeUnknown
}

// FingerprintUUID16s returns the 16-bit SIG-assigned service UUIDs the
// classifier can fingerprint. BLE scanners that can only probe a
// payload for specific UUIDs use this as the probe list. Vendor
// services with full 128-bit UUIDs are not probeable and are omitted.
func FingerprintUUID16s() []uint16 {
	var uuids []uint16
	seen := make(map[uint16]bool)
	for _, r := range serviceUUIDRules {
		if !strings.HasPrefix(r.pattern, "0000") || len(r.pattern) != 8 {
			continue
		}
		v, err := strconv.ParseUint(r.pattern[4:], 16, 16)
		if err != nil || seen[uint16(v)] {
			continue
		}
		seen[uint16(v)] = true
		uuids = append(uuids, uint16(v))
	}
	return uuids
}

// ServiceUUIDNames returns short display names for the recognizable
// UUIDs in the list, in input order. Unrecognized UUIDs are skipped.
func ServiceUUIDNames(serviceUUIDs []string) []string {
	var names []string
	for _, uuid := range serviceUUIDs {
		normalized := strings.ReplaceAll(strings.ToLower(uuid), "-", "")
		for _, known := range wellKnownServiceNames {
			if strings.Contains(normalized, known.pattern) {
				names = append(names, known.name)
				break
			}
		}
	}
	return names
}
