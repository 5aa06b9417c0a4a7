package chip8

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

const (
	// DefaultInstructionsPerSecond gives 10 instructions per 60Hz frame.
	DefaultInstructionsPerSecond = 600
	DefaultScale                 = 10
)

// Config holds the machine and presentation settings.
type Config struct {
	Width  int
	Height int

	Foreground video.Color
	Background video.Color
	Scale      int

	InstructionsPerSecond int

	// Seed for the CXNN random source. Zero picks a random seed.
	Seed uint64
}

// DefaultConfig returns the standard 64x32 white on black machine at 600 instructions per second.
func DefaultConfig() Config {
	return Config{
		Width:                 video.FramebufferWidth,
		Height:                video.FramebufferHeight,
		Foreground:            video.WhiteColor,
		Background:            video.BlackColor,
		Scale:                 DefaultScale,
		InstructionsPerSecond: DefaultInstructionsPerSecond,
	}
}

// InstructionsPerFrame is how many instructions run between two timer ticks.
func (c Config) InstructionsPerFrame() int {
	return c.InstructionsPerSecond / timing.TimerFrequency
}

// Validate checks that the config describes a machine that can run.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: display size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width > 256 || c.Height > 256 {
		return fmt.Errorf("%w: display size must fit sprite coordinates, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalidConfig, c.Scale)
	}
	if c.InstructionsPerSecond < timing.TimerFrequency {
		return fmt.Errorf("%w: instructions per second must be at least %d, got %d",
			ErrInvalidConfig, timing.TimerFrequency, c.InstructionsPerSecond)
	}
	return nil
}
