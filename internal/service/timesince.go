package service

import (
	"strconv"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeSincePosted renders the age of created relative to now using the
// largest whole unit, e.g. "3 months ago" or "1 hour ago". Hours and minutes
// count only the part of the last day that has not completed. A created time
// in the future reads "Just now".
func TimeSincePosted(created, now time.Time) string {
	elapsed := int64(now.Sub(created) / time.Second)
	if elapsed < 0 {
		return "Just now"
	}
	days := elapsed / secondsPerDay
	seconds := elapsed % secondsPerDay

	switch {
	case days >= 365:
		return ago(days/365, "year")
	case days >= 30:
		return ago(days/30, "month")
	case days >= 1:
		return ago(days, "day")
	case seconds >= 3600:
		return ago(seconds/3600, "hour")
	case seconds >= 60:
		return ago(seconds/60, "minute")
	default:
		return "Just now"
	}
}

func ago(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s ago"
}
