package patterns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/bluehood-core/internal/device"
)

// dominantThreshold is the share of activity the top time periods
// must cover to be called dominant.
const dominantThreshold = 0.6

// minSamples is the sighting count below which no pattern is claimed.
const minSamples = 5

// Pattern is the analyzed traffic pattern for one device.
type Pattern struct {
	TimeDescription string `json:"time_description"` // e.g. "Evening (5PM-9PM)"
	DayDescription  string `json:"day_description"`  // e.g. "Mostly weekdays"
	Frequency       string `json:"frequency"`        // e.g. "Daily"
	Summary         string `json:"summary"`
}

// History is the slice of the device repository the analyzer reads.
type History interface {
	GetSightings(ctx context.Context, mac string, days int) ([]device.Sighting, error)
	GetHourlyDistribution(ctx context.Context, mac string, days int) (map[int]int, error)
	GetDailyDistribution(ctx context.Context, mac string, days int) (map[int]int, error)
}

// timePeriod is a named stretch of the day. Periods are checked in
// order; hours are half-open [start, end).
type timePeriod struct {
	key   string
	label string
	start int
	end   int
}

var timePeriods = []timePeriod{
	{"early_morning", "Early morning (5AM-8AM)", 5, 8},
	{"morning", "Morning (8AM-12PM)", 8, 12},
	{"afternoon", "Afternoon (12PM-5PM)", 12, 17},
	{"evening", "Evening (5PM-9PM)", 17, 21},
	{"night", "Night (9PM-12AM)", 21, 24},
	{"late_night", "Late night (12AM-5AM)", 0, 5},
}

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Analyze summarizes a device's recent history over the given window.
func Analyze(ctx context.Context, history History, mac string, days int) (*Pattern, error) {
	if days <= 0 {
		days = 30
	}

	hourly, err := history.GetHourlyDistribution(ctx, mac, days)
	if err != nil {
		return nil, fmt.Errorf("analyzing time pattern: %w", err)
	}
	daily, err := history.GetDailyDistribution(ctx, mac, days)
	if err != nil {
		return nil, fmt.Errorf("analyzing day pattern: %w", err)
	}
	sightings, err := history.GetSightings(ctx, mac, days)
	if err != nil {
		return nil, fmt.Errorf("analyzing frequency: %w", err)
	}

	timeDesc := analyzeTimePattern(hourly)
	dayDesc := analyzeDayPattern(daily)
	frequency := analyzeFrequency(len(sightings), days)

	return &Pattern{
		TimeDescription: timeDesc,
		DayDescription:  dayDesc,
		Frequency:       frequency,
		Summary:         buildSummary(timeDesc, dayDesc, frequency),
	}, nil
}

// buildSummary joins the notable parts into one readable phrase,
// dropping anything uninformative.
func buildSummary(timeDesc, dayDesc, frequency string) string {
	var parts []string
	if frequency != "Never seen" && frequency != "Rare" {
		parts = append(parts, frequency)
	}
	if timeDesc != "No data" && timeDesc != "Insufficient data" && timeDesc != "All day" {
		parts = append(parts, strings.ToLower(timeDesc))
	}
	if dayDesc != "No data" && dayDesc != "Insufficient data" && dayDesc != "All week" {
		parts = append(parts, strings.ToLower(dayDesc))
	}

	if len(parts) == 0 {
		return frequency
	}
	summary := strings.Join(parts, ", ")
	return strings.ToUpper(summary[:1]) + summary[1:]
}

// periodForHour maps an hour of day to its period key.
func periodForHour(hour int) string {
	for _, p := range timePeriods {
		if p.start <= hour && hour < p.end {
			return p.key
		}
	}
	return "unknown"
}

func periodLabel(key string) string {
	for _, p := range timePeriods {
		if p.key == key {
			return p.label
		}
	}
	return key
}

// dominantPeriods returns the busiest periods, largest first, until
// together they cover the threshold share of all activity.
func dominantPeriods(hourly map[int]int) []string {
	total := 0
	for _, count := range hourly {
		total += count
	}
	if total == 0 {
		return nil
	}

	periodCounts := make(map[string]int)
	for hour, count := range hourly {
		periodCounts[periodForHour(hour)] += count
	}

	type periodCount struct {
		key   string
		count int
	}
	sorted := make([]periodCount, 0, len(periodCounts))
	for key, count := range periodCounts {
		sorted = append(sorted, periodCount{key, count})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})

	var dominant []string
	accumulated := 0
	for _, pc := range sorted {
		dominant = append(dominant, pc.key)
		accumulated += pc.count
		if float64(accumulated)/float64(total) >= dominantThreshold {
			break
		}
	}
	return dominant
}

// formatHourRange renders the active hour span as e.g. "5PM-11PM".
// The end is exclusive: activity within hour 22 runs until 11PM.
func formatHourRange(hours []int) string {
	if len(hours) == 0 {
		return "Unknown"
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	return formatHour(sorted[0]) + "-" + formatHour((sorted[len(sorted)-1]+1)%24)
}

func formatHour(h int) string {
	switch {
	case h == 0:
		return "12AM"
	case h < 12:
		return fmt.Sprintf("%dAM", h)
	case h == 12:
		return "12PM"
	default:
		return fmt.Sprintf("%dPM", h-12)
	}
}

// analyzeTimePattern describes when during the day a device is seen.
func analyzeTimePattern(hourly map[int]int) string {
	if len(hourly) == 0 {
		return "No data"
	}

	total := 0
	for _, count := range hourly {
		total += count
	}
	if total < minSamples {
		return "Insufficient data"
	}

	dominant := dominantPeriods(hourly)
	if len(dominant) >= 4 {
		return "All day"
	}

	// Hours carrying at least 5% of activity define the active span.
	var activeHours []int
	for hour, count := range hourly {
		if float64(count) >= float64(total)*0.05 {
			activeHours = append(activeHours, hour)
		}
	}
	if len(activeHours) == 0 {
		return "Sporadic"
	}

	if len(dominant) == 1 {
		return periodLabel(dominant[0])
	}
	return formatHourRange(activeHours)
}

// analyzeDayPattern describes which days of the week a device is
// seen. Days are Monday-based (0=Mon .. 6=Sun).
func analyzeDayPattern(daily map[int]int) string {
	if len(daily) == 0 {
		return "No data"
	}

	total := 0
	for _, count := range daily {
		total += count
	}
	if total < minSamples {
		return "Insufficient data"
	}

	weekdayCount := 0
	for d := 0; d < 5; d++ {
		weekdayCount += daily[d]
	}
	weekendCount := daily[5] + daily[6]

	weekdayRatio := float64(weekdayCount) / float64(total)
	weekendRatio := float64(weekendCount) / float64(total)

	switch {
	case weekdayRatio > 0.85:
		return "Weekdays only"
	case weekendRatio > 0.7:
		return "Weekends only"
	case weekdayRatio > 0.7:
		return "Mostly weekdays"
	case weekendRatio > 0.5:
		return "Mostly weekends"
	}

	// No weekday/weekend lean: name individual standout days.
	avg := float64(total) / 7
	var activeDays []string
	for d := 0; d < 7; d++ {
		if float64(daily[d]) > avg*1.5 {
			activeDays = append(activeDays, dayNames[d])
		}
	}
	if len(activeDays) > 0 {
		return strings.Join(activeDays, ", ")
	}
	return "All week"
}

// analyzeFrequency buckets the average sightings per day into a
// frequency label.
func analyzeFrequency(totalSightings, daysTracked int) string {
	if totalSightings == 0 {
		return "Never seen"
	}
	if daysTracked <= 0 {
		daysTracked = 30
	}

	avgPerDay := float64(totalSightings) / float64(daysTracked)
	switch {
	case avgPerDay >= 5:
		return "Constant"
	case avgPerDay >= 2:
		return "Very frequent"
	case avgPerDay >= 1:
		return "Daily"
	case avgPerDay >= 0.5:
		return "Regular"
	case avgPerDay >= 0.15:
		return "Occasional"
	default:
		return "Rare"
	}
}
