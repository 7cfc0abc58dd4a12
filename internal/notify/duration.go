package notify

import "fmt"

// FormatDuration renders a duration given in minutes as a human
// phrase: whole minutes under an hour, fractional hours under a day,
// fractional days beyond that.
func FormatDuration(minutes float64) string {
	switch {
	case minutes < 60:
		m := int(minutes)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	case minutes < 1440:
		return fmt.Sprintf("%.1f hours", minutes/60)
	default:
		return fmt.Sprintf("%.1f days", minutes/1440)
	}
}
