// Package oui resolves MAC address prefixes to manufacturer names.
//
// Resolution tries a local copy of the IEEE OUI registry first and
// falls back to the macvendors.com API. Only the three-byte prefix
// ever leaves the machine. Addresses that cannot carry an OUI at all,
// meaning macOS CoreBluetooth proxy UUIDs and privacy-randomized MAC
// addresses, resolve to nothing without any lookup.
//
// The resolver caches every outcome including misses, so a device
// whose prefix is not registered costs at most one remote request per
// process lifetime. Remote requests share a minimum-interval cooldown
// to stay inside the API's rate limits. Lookup never returns an
// error; all failures degrade to an unknown vendor.
package oui
