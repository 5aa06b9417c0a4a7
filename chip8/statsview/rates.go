package statsview

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RateSource is a running machine whose counters can be read from another goroutine.
type RateSource interface {
	FrameCount() uint64
	InstructionCount() uint64
}

// Rates is the machine throughput measured over one sampling interval.
type Rates struct {
	FramesPerSecond       float64
	InstructionsPerSecond float64
}

// Sampler turns successive counter readings into per second rates.
type Sampler struct {
	source RateSource
	now    func() time.Time

	last         time.Time
	frames       uint64
	instructions uint64
}

// NewSampler takes the first reading of source.
func NewSampler(source RateSource) *Sampler {
	return newSampler(source, time.Now)
}

func newSampler(source RateSource, now func() time.Time) *Sampler {
	return &Sampler{
		source:       source,
		now:          now,
		last:         now(),
		frames:       source.FrameCount(),
		instructions: source.InstructionCount(),
	}
}

// Sample returns the rates since the previous reading. Counters that went
// backwards, as after loading a new ROM, are counted from zero.
func (s *Sampler) Sample() Rates {
	now := s.now()
	frames := s.source.FrameCount()
	instructions := s.source.InstructionCount()

	var rates Rates
	if elapsed := now.Sub(s.last).Seconds(); elapsed > 0 {
		rates.FramesPerSecond = float64(delta(frames, s.frames)) / elapsed
		rates.InstructionsPerSecond = float64(delta(instructions, s.instructions)) / elapsed
	}

	s.last, s.frames, s.instructions = now, frames, instructions
	return rates
}

func delta(current, previous uint64) uint64 {
	if current < previous {
		return current
	}
	return current - previous
}

// Monitor logs the machine rates every interval until ctx is done.
func Monitor(ctx context.Context, source RateSource, interval time.Duration) {
	sampler := NewSampler(source)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rates := sampler.Sample()
			slog.Info("Machine rates",
				"fps", fmt.Sprintf("%.1f", rates.FramesPerSecond),
				"ips", fmt.Sprintf("%.0f", rates.InstructionsPerSecond))
		}
	}
}
