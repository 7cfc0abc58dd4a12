// Package scan discovers nearby Bluetooth devices.
//
// Two backends run concurrently: a BLE scanner listening for
// advertisements, and a classic Bluetooth inquiry driven by hcitool.
// Each backend fails independently; a missing adapter or absent
// hcitool binary degrades that backend to an empty result instead of
// failing the cycle. Merged results prefer the BLE sighting when both
// backends report the same address, since BLE carries richer evidence
// (advertised name, service UUIDs, real RSSI).
package scan
