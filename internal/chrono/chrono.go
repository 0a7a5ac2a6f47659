// Package chrono resolves the site's relative display timestamps into
// absolute instants. The site renders dates as "Aujourd'hui à HH:MM" or
// "Hier à HH:MM"; anything else passes through unresolved.
package chrono

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	todayMarker     = "Aujourd'hui"
	yesterdayMarker = "Hier"
)

var clockExpr = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// Resolve maps a relative display string to an absolute timestamp anchored
// at the retrieval instant now. "Aujourd'hui à 17:23" resolves to now's
// calendar date at 17:23:00; "Hier à 23:22" to now's date minus one day at
// 23:22:00. The second return is false when the string carries no
// recognizable relative form, in which case callers keep the raw text.
func Resolve(display string, now time.Time) (time.Time, bool) {
	display = strings.TrimSpace(display)

	var dayShift int
	switch {
	case strings.Contains(display, todayMarker):
		dayShift = 0
	case strings.Contains(display, yesterdayMarker):
		dayShift = -1
	default:
		return time.Time{}, false
	}

	match := clockExpr.FindStringSubmatch(display)
	if match == nil {
		return time.Time{}, false
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	if hours > 23 || minutes > 59 {
		return time.Time{}, false
	}

	day := now.AddDate(0, 0, dayShift)
	return time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, now.Location()), true
}
