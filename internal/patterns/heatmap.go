package patterns

// heatBlocks are the intensity glyphs from quiet to busy.
var heatBlocks = []rune(" ░▒▓█")

// HourlyHeatmap renders 24 intensity glyphs, one per hour of day,
// scaled against the busiest hour.
func HourlyHeatmap(hourly map[int]int) string {
	if len(hourly) == 0 {
		return "No data"
	}
	return heatmap(hourly, 24)
}

// DailyHeatmap renders 7 intensity glyphs, Monday first, scaled
// against the busiest day.
func DailyHeatmap(daily map[int]int) string {
	if len(daily) == 0 {
		return "No data"
	}
	return heatmap(daily, 7)
}

func heatmap(counts map[int]int, buckets int) string {
	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}

	out := make([]rune, buckets)
	for i := 0; i < buckets; i++ {
		intensity := 0
		if maxCount > 0 {
			intensity = counts[i] * (len(heatBlocks) - 1) / maxCount
		}
		out[i] = heatBlocks[intensity]
	}
	return string(out)
}
