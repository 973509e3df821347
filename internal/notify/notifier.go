package notify

import (
	"context"
	"fmt"
)

// Notifier delivers notifications to a downstream integration.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// DeliveryError reports a downstream endpoint that answered with a non-2xx status.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Status     string
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %s", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s returned status %s: %s", e.Provider, e.Status, e.Body)
}
