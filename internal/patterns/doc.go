// Package patterns summarizes a device's sighting history into human
// phrases: when during the day it shows up, which days of the week,
// and how often. The summaries feed device listings and detail views
// so an operator can read "Daily, evening (5PM-9PM), mostly weekdays"
// instead of a raw histogram. Compact ASCII heatmaps of the same
// histograms are available for terminal clients.
package patterns
