package update

import (
	"fmt"
	"strings"
	"time"
)

// parseWhen turns a palette time argument into a concrete deadline.
// Accepted forms: RFC3339, "2006-01-02 15:04", "2006-01-02", "15:04"
// (today), and "today"/"tomorrow" optionally followed by "15:04".
func parseWhen(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	switch {
	case lower == "tomorrow":
		return now.Add(24 * time.Hour), nil
	case strings.HasPrefix(lower, "today "):
		return atClock(now, strings.TrimSpace(lower[len("today "):]))
	case strings.HasPrefix(lower, "tomorrow "):
		return atClock(now.Add(24*time.Hour), strings.TrimSpace(lower[len("tomorrow "):]))
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	if parsed, err := time.Parse("15:04", raw); err == nil {
		return atClockTime(now, parsed.Hour(), parsed.Minute()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time: %s", raw)
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time: %s", clock)
	}
	return atClockTime(day, parsed.Hour(), parsed.Minute()), nil
}

func atClockTime(day time.Time, hour, minute int) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location())
}
