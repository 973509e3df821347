package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ifttt-relay/internal/notify"
)

// Dispatcher accepts events for delivery without making the caller wait.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notify.Event)
}

// Service renders events and fans them out to the configured notifiers.
type Service struct {
	notifiers []notify.Notifier
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

// NewService builds a relay service. loc is the zone timestamps are rendered in.
func NewService(notifiers []notify.Notifier, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		notifiers: notifiers,
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Emit renders event and hands the notification to every notifier, in order.
// Notifier failures are logged and returned joined; one failing notifier
// does not stop the others.
func (s *Service) Emit(ctx context.Context, event notify.Event) error {
	n := notify.Render(event, s.now(), s.location)
	logger := s.logger.With(requestAttrs(ctx)...)

	if len(s.notifiers) == 0 {
		logger.Info("event not forwarded, no notifiers configured",
			"value1", n.Value1, "value2", n.Value2, "value3", n.Value3)
		return nil
	}

	logger.Debug("relaying event", "level", event.Level.String(), "source", event.Source)

	var errs []error
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			attrs := []any{"notifier", fmt.Sprintf("%T", notifier), "error", err}
			var delivery *notify.DeliveryError
			if errors.As(err, &delivery) {
				attrs = append(attrs, "status", delivery.StatusCode)
			}
			logger.Error("notifier error", attrs...)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch emits event on a background goroutine. The goroutine keeps the
// values of ctx but not its cancellation, so it outlives the request.
func (s *Service) Dispatch(ctx context.Context, event notify.Event) {
	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_ = s.Emit(detached, event)
	}()
}

// Wait blocks until every dispatched event has been handled or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Dispatcher = (*Service)(nil)
