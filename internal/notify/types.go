package notify

import "time"

// Event is a normalized log event ready to be rendered for delivery.
// A zero Timestamp means the instant is resolved at emission time.
type Event struct {
	Timestamp time.Time
	Level     Level
	Source    string
	Message   string
}

// Notification is the three-value payload accepted by the trigger endpoint.
type Notification struct {
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
	Value3 string `json:"value3"`
}
