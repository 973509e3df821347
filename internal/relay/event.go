package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ifttt-relay/internal/notify"
)

const (
	defaultSource  = "Unknown source"
	defaultMessage = "???"

	// Largest distance from the epoch, in milliseconds, that still names an
	// instant (100 000 000 days).
	maxEpochMillis = 8.64e15
)

// DecodeEvent parses a submission body into a normalized event.
//
// The body must be a single JSON object. Missing fields fall back to
// placeholders unless strict is set, in which case level, source and message
// are required. The timestamp is always optional.
func DecodeEvent(body []byte, strict bool) (notify.Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return notify.Event{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if fields == nil {
		return notify.Event{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedBody)
	}

	if strict {
		for _, name := range []string{"level", "source", "message"} {
			if isNull(fields[name]) {
				return notify.Event{}, fmt.Errorf("%w: missing required field %q", ErrMalformedBody, name)
			}
		}
	}

	level, err := decodeLevel(fields["level"])
	if err != nil {
		return notify.Event{}, err
	}

	return notify.Event{
		Timestamp: ParseTimestamp(fields["timestamp"]),
		Level:     level,
		Source:    stringOr(fields["source"], defaultSource),
		Message:   stringOr(fields["message"], defaultMessage),
	}, nil
}

// ParseTimestamp reads epoch milliseconds from a JSON number or a base-10
// string. Strings are read up to the first non-digit, so "1700000000000ms"
// is accepted. Anything absent, zero, unparseable or out of range yields the
// zero time, which means "now" at emission.
func ParseTimestamp(raw json.RawMessage) time.Time {
	if isNull(raw) {
		return time.Time{}
	}

	var ms float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}
		}
		v, ok := leadingInt(s)
		if !ok {
			return time.Time{}
		}
		ms = v
	default:
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return time.Time{}
		}
		ms = math.Trunc(v)
	}

	if ms == 0 || math.Abs(ms) > maxEpochMillis {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

// leadingInt parses an optionally signed run of decimal digits at the start
// of s, after leading whitespace.
func leadingInt(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func decodeLevel(raw json.RawMessage) (notify.Level, error) {
	if isNull(raw) {
		return notify.LevelUnknown, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: level must be a string", ErrMalformedBody)
	}
	return notify.ParseLevel(s), nil
}

// stringOr returns the string value of raw, or fallback when raw is absent or
// null. Other JSON values are kept as their compact JSON text.
func stringOr(raw json.RawMessage, fallback string) string {
	if isNull(raw) {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
