package button

import (
	"context"
	"time"
)

// Clock returns a monotonic millisecond counter. The counter wraps at 2^32,
// roughly every 49.7 days; Button only ever subtracts readings, so a wrap
// between two readings still yields the right elapsed time.
type Clock func() uint32

// SystemClock returns a Clock counting milliseconds since the call.
// It uses the monotonic reading of time.Now and ignores wall clock steps.
func SystemClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// ScanEvery calls b.Scan on every tick until ctx is done.
func ScanEvery(ctx context.Context, b *Button, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			b.Scan()
		}
	}
}
