package input

import (
	"time"

	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
)

// Handler applies debouncing to emulator actions. Keypad actions and Hold
// events always pass, games need every edge.
type Handler struct {
	lastActionTime map[action.Action]map[event.Type]time.Time
	debounceDelay  time.Duration
	now            func() time.Time
}

func NewHandler() *Handler {
	return &Handler{
		lastActionTime: make(map[action.Action]map[event.Type]time.Time),
		debounceDelay:  300 * time.Millisecond,
		now:            time.Now,
	}
}

// ProcessEvent returns true if the event should be handled, false if it was debounced
func (h *Handler) ProcessEvent(act action.Action, evt event.Type) bool {
	if act.IsKeypad() || evt == event.Hold {
		return true
	}

	now := h.now()
	if h.lastActionTime[act] == nil {
		h.lastActionTime[act] = make(map[event.Type]time.Time)
	}
	if lastTime, exists := h.lastActionTime[act][evt]; exists {
		if now.Sub(lastTime) < h.debounceDelay {
			return false
		}
	}
	h.lastActionTime[act][evt] = now

	return true
}
