package notify

import (
	"time"
)

const (
	timestampPrefix = "⏳ "
	// French short date with medium time, reordered year first:
	// 15/01/2024 14:30:00 becomes 2024/01/15-14:30:00.
	timestampLayout = "2006/01/02-15:04:05"
)

// FormatTimestamp renders t in loc the way it appears in value1.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return timestampPrefix + t.In(loc).Format(timestampLayout)
}

// Render builds the outbound payload for event. A zero event timestamp is
// replaced by now.
func Render(event Event, now time.Time, loc *time.Location) Notification {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return Notification{
		Value1: FormatTimestamp(ts, loc),
		Value2: event.Level.Marker() + "  " + event.Source,
		Value3: event.Message,
	}
}
