package chip8

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// backendActions are forwarded to backends that implement backend.ActionHandler.
var backendActions = []action.Action{
	action.EmulatorSnapshot,
	action.EmulatorDebugToggle,
	action.DebugLogLevelIncrease,
	action.DebugLogLevelDecrease,
}

// Run drives the machine until it quits or ctx is cancelled. Each iteration
// presents the display to the backend, routes the returned input through the
// manager, runs one frame (or a pending debugger step) and waits for the
// limiter. A machine fault ends the loop with a nil error; check m.Fault().
func Run(ctx context.Context, m *Machine, b backend.Backend, limiter timing.Limiter, manager *input.Manager) error {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	if manager == nil {
		manager = input.NewManager(m.Keypad())
	}

	var stepInstruction, stepFrame bool

	manager.On(action.EmulatorQuit, event.Press, func() {
		m.SetState(Quit)
	})
	manager.On(action.EmulatorPauseToggle, event.Press, func() {
		m.TogglePause()
		limiter.Reset()
	})
	manager.On(action.EmulatorStepInstruction, event.Press, func() {
		stepInstruction = true
	})
	manager.On(action.EmulatorStepFrame, event.Press, func() {
		stepFrame = true
	})
	manager.On(action.EmulatorStateDump, event.Press, func() {
		if _, err := debug.DumpStateGraph(m.ExtractDebugData(), ""); err != nil {
			slog.Error("Failed to dump state graph", "error", err)
		}
	})

	if handler, ok := b.(backend.ActionHandler); ok {
		for _, act := range backendActions {
			manager.On(act, event.Press, func() { handler.HandleAction(act) })
		}
	}

	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var frame *video.FrameBuffer
		if first || m.Dirty() {
			frame = m.Frame()
			first = false
		}

		events, err := b.Update(frame, m.SoundActive())
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}
		for _, e := range events {
			manager.Trigger(e.Action, e.Type)
		}

		switch m.State() {
		case Quit:
			return nil
		case Running:
			m.RunFrame()
		case Paused:
			if stepFrame {
				m.StepFrame()
			} else if stepInstruction {
				m.Step()
			}
		}
		stepFrame, stepInstruction = false, false

		limiter.WaitForNextFrame()
	}
}
