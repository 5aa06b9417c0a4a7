package timing

import "time"

// TickerLimiter paces frames with a time.Ticker at the 60Hz timer rate.
// It drops frames instead of catching up: a tick missed while the loop was
// busy is not replayed.
type TickerLimiter struct {
	ticker  *time.Ticker
	period  time.Duration
	stopped bool
}

func NewTickerLimiter() *TickerLimiter {
	return newTickerLimiter(FrameDuration())
}

func newTickerLimiter(period time.Duration) *TickerLimiter {
	return &TickerLimiter{
		ticker: time.NewTicker(period),
		period: period,
	}
}

// WaitForNextFrame blocks until the next tick. After Stop it returns immediately.
func (t *TickerLimiter) WaitForNextFrame() {
	if t.stopped {
		return
	}
	<-t.ticker.C
}

// Reset restarts the period from now. A tick left pending by a pause is discarded.
func (t *TickerLimiter) Reset() {
	if t.stopped {
		return
	}
	t.ticker.Reset(t.period)
}

// Stop releases the ticker. The limiter no longer waits afterwards.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
	t.stopped = true
}
