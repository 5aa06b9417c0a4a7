package input

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keypad is the input latch for the 16 key hex pad.
// The input side writes the pending state at any time; Latch copies it
// wholesale into the state the interpreter reads, once per frame.
type Keypad struct {
	pending [KeyCount]bool
	latched [KeyCount]bool
}

// NewKeypad returns a keypad with every key released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks key k as held down in the pending state.
func (k *Keypad) Press(key uint8) {
	if int(key) < KeyCount {
		k.pending[key] = true
	}
}

// Release marks key k as up in the pending state.
func (k *Keypad) Release(key uint8) {
	if int(key) < KeyCount {
		k.pending[key] = false
	}
}

// Set replaces the whole pending state, as produced by a keypad scanner.
func (k *Keypad) Set(state [KeyCount]bool) {
	k.pending = state
}

// Latch publishes the pending state to the interpreter.
func (k *Keypad) Latch() {
	k.latched = k.pending
}

// IsPressed reports whether key was down at the last Latch. Keys outside 0x0-0xF are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if int(key) >= KeyCount {
		return false
	}
	return k.latched[key]
}

// State returns the latched state.
func (k *Keypad) State() [KeyCount]bool {
	return k.latched
}
