package utils

import (
	"strconv"
	"time"
)

// RelativeTime shifts base by a whole number of seconds.
func RelativeTime(base time.Time, offsetSeconds int) time.Time {
	return base.Add(time.Duration(offsetSeconds) * time.Second)
}

// ClockLabel renders t as a 12-hour wall clock label such as "01:43 PM".
func ClockLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("03:04 PM")
}

// TimeAgo renders the distance between t and now in the coarse form used on
// ticket timelines ("Just now", "5 min ago", "2 hours ago", "3 days ago").
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return strconv.Itoa(mins) + " min ago"
	}
	hours := mins / 60
	if hours < 24 {
		return plural(hours, "hour") + " ago"
	}
	return plural(hours/24, "day") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
