package notify

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Level is the severity attached to a relayed event.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
	LevelUnknown Level = "UNKNOWN"
)

// levelNames maps upper-cased names, including the short forms older
// callers still send, to their level.
var levelNames = map[string]Level{
	"DEBUG":   LevelDebug,
	"DEB":     LevelDebug,
	"INFO":    LevelInfo,
	"INF":     LevelInfo,
	"WARN":    LevelWarn,
	"WAR":     LevelWarn,
	"WARNING": LevelWarn,
	"ERROR":   LevelError,
	"ERR":     LevelError,
	"UNKNOWN": LevelUnknown,
	"UNK":     LevelUnknown,
}

// ParseLevel matches s against the known severities by name, ignoring case.
// Anything unrecognized, including the empty string, is LevelUnknown.
func ParseLevel(s string) Level {
	if l, ok := levelNames[cases.Upper(language.Und).String(s)]; ok {
		return l
	}
	return LevelUnknown
}

func (l Level) String() string {
	return string(l)
}

// Marker returns the emoji shown in front of the event source.
func (l Level) Marker() string {
	switch l {
	case LevelDebug:
		return "🔍"
	case LevelInfo:
		return "💡"
	case LevelWarn:
		return "⚡"
	case LevelError:
		return "🌋"
	default:
		return "❔"
	}
}
