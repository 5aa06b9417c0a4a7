package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Hex keypad, in key order so that Key0+n is key n
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorStateDump
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by who handles them.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
	CategoryDebug
)

// Info describes an action.
type Info struct {
	Category    Category
	Description string
}

// IsKeypad reports whether the action is one of the 16 hex keys.
func (a Action) IsKeypad() bool {
	return a >= Key0 && a <= KeyF
}

// Key returns the keypad index for a keypad action.
func (a Action) Key() uint8 {
	return uint8(a - Key0)
}

// FromKey returns the keypad action for key index k (0x0-0xF).
func FromKey(k uint8) Action {
	return Key0 + Action(k&0x0F)
}

var infos = map[Action]Info{
	EmulatorDebugToggle:     {CategoryEmulator, "Toggle debug view"},
	EmulatorSnapshot:        {CategoryEmulator, "Save snapshot"},
	EmulatorStateDump:       {CategoryEmulator, "Dump machine state graph"},
	EmulatorPauseToggle:     {CategoryEmulator, "Pause/resume"},
	EmulatorStepFrame:       {CategoryEmulator, "Step frame"},
	EmulatorStepInstruction: {CategoryEmulator, "Step instruction"},
	EmulatorQuit:            {CategoryEmulator, "Quit"},
	DebugLogLevelIncrease:   {CategoryDebug, "More verbose logs"},
	DebugLogLevelDecrease:   {CategoryDebug, "Less verbose logs"},
}

// GetInfo returns the category and description of an action.
func GetInfo(a Action) Info {
	if a.IsKeypad() {
		return Info{Category: CategoryKeypad, Description: fmt.Sprintf("Key %X", a.Key())}
	}
	if info, ok := infos[a]; ok {
		return info
	}
	return Info{Category: CategoryEmulator, Description: "Unknown"}
}
