// Package classify assigns a device type to a Bluetooth device from the
// evidence a scan collects: advertised service UUIDs, the advertised
// name, the classic Bluetooth device class, and the resolved vendor.
//
// Signals are consulted in decreasing order of reliability. Service
// UUIDs describe what the device actually does, so they win over
// everything else. Advertised names often include the product line.
// The classic device class encodes a major category set by the
// manufacturer. Vendor matching is the weakest signal and runs last
// because many vendors ship devices in several categories.
//
// The package also identifies two address oddities scanners encounter:
// macOS CoreBluetooth proxy UUIDs standing in for real addresses, and
// locally administered (privacy-randomized) MAC addresses.
package classify
