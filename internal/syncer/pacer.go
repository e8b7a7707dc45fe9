package syncer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates the start of each identity's CRM work, capping the outbound
// request rate independently of the 449 backoff. Tests inject a no-op.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewIntervalPacer returns a fixed-interval gate: the first acquisition is
// immediate, each subsequent one is spaced by at least interval. A zero or
// negative interval disables pacing.
func NewIntervalPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return nopPacer{}
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type nopPacer struct{}

func (nopPacer) Wait(context.Context) error { return nil }
