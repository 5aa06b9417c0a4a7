package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestHandler() (*Handler, *fakeClock) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := NewHandler()
	h.now = clock.Now
	return h, clock
}

func TestHandler_Debouncing(t *testing.T) {
	tests := []struct {
		name           string
		action         action.Action
		eventType      event.Type
		timeBetween    time.Duration
		expectDebounce bool
	}{
		{
			name:           "UI action rapid press - should debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    100 * time.Millisecond,
			expectDebounce: true,
		},
		{
			name:           "UI action slow press - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    400 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Keypad rapid press - should not debounce",
			action:         action.Key5,
			eventType:      event.Press,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Keypad rapid release - should not debounce",
			action:         action.KeyF,
			eventType:      event.Release,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Hold event type - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Hold,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, clock := newTestHandler()

			assert.True(t, handler.ProcessEvent(tt.action, tt.eventType), "First event should always pass")

			clock.Advance(tt.timeBetween)

			result := handler.ProcessEvent(tt.action, tt.eventType)
			if tt.expectDebounce {
				assert.False(t, result, "Second event should be debounced")
			} else {
				assert.True(t, result, "Second event should not be debounced")
			}
		})
	}
}

func TestHandler_MultipleActions(t *testing.T) {
	handler, _ := newTestHandler()

	// Different actions shouldn't interfere with each other
	assert.True(t, handler.ProcessEvent(action.EmulatorDebugToggle, event.Press), "First debug toggle should pass")
	assert.True(t, handler.ProcessEvent(action.EmulatorSnapshot, event.Press), "First snapshot should pass")

	assert.False(t, handler.ProcessEvent(action.EmulatorDebugToggle, event.Press), "Rapid debug toggle should be debounced")
	assert.False(t, handler.ProcessEvent(action.EmulatorSnapshot, event.Press), "Rapid snapshot should be debounced")

	// press and release of the same action are tracked separately
	assert.True(t, handler.ProcessEvent(action.EmulatorSnapshot, event.Release))
}
