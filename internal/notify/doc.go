// Package notify turns device sightings into push notifications.
//
// The Gateway watches three events: a device seen for the first time
// ever, a watched device reappearing after a configurable absence,
// and a watched device staying absent past a configurable threshold.
// Delivery goes through ntfy, a topic-based HTTP push service; a
// delivery failure is logged and swallowed so notification trouble
// can never disturb scanning.
//
// Absence alerts are suppressed for an hour per device so a device
// hovering at the edge of radio range does not generate a stream of
// departure messages.
package notify
