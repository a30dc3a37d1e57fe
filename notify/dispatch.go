package notify

import (
	"context"
	"time"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/ratelimit"
)

// Per-send delivery statuses, recorded in logs for operational visibility.
const (
	statusSent    = "SENT"
	statusFailed  = "FAILED"
	statusSkipped = "SKIPPED"
)

// Dispatcher fires notification instructions after the booking response has
// already gone out. No result ever reaches the caller and nothing is
// retried; a channel failure is logged and the remaining channels still
// run. A secondary per-tenant ceiling guards against notification storms,
// independent of the booking-forward limiter.
type Dispatcher struct {
	providers map[property_models.Channel]Provider
	limiter   *ratelimit.Limiter
	ceiling   int
	timeout   time.Duration
}

func NewDispatcher(providers map[property_models.Channel]Provider, limiter *ratelimit.Limiter, ceiling int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		providers: providers,
		limiter:   limiter,
		ceiling:   ceiling,
		timeout:   timeout,
	}
}

// Dispatch sends every instruction in the set. It is meant to run on its
// own goroutine with a fresh context; the originating request context is
// already gone by the time it executes. Panics are absorbed so a provider
// bug cannot take the process down.
func (d *Dispatcher) Dispatch(set *InstructionSet) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Errorf("Dispatch panic for booking %s: %v", set.BookingID, r)
		}
	}()

	if set.Empty() {
		return
	}

	ctx := context.Background()

	if d.limiter.DispatchLimited(ctx, set.Slug, d.ceiling) {
		logger.InfoLogger.Infof("Notification ceiling reached for %s, booking %s status=%s", set.Slug, set.BookingID, statusSkipped)
		return
	}
	d.limiter.DispatchIncrement(ctx, set.Slug)

	for role, byChannel := range set.Instructions {
		for ch, ins := range byChannel {
			provider, ok := d.providers[ch]
			if !ok {
				logger.InfoLogger.Infof("No provider for channel %s, booking %s role=%s status=%s", ch, set.BookingID, role, statusSkipped)
				continue
			}

			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			err := provider.Send(sendCtx, ins)
			cancel()

			if err != nil {
				logger.ErrorLogger.Errorf("Notification failed: booking=%s role=%s channel=%s status=%s err=%v", set.BookingID, role, ch, statusFailed, err)
				continue
			}
			logger.InfoLogger.Infof("Notification delivered: booking=%s role=%s channel=%s status=%s", set.BookingID, role, ch, statusSent)
		}
	}
}
