package cpu

// Timers holds the delay and sound counters. Both count down once per Tick
// and stop at zero.
type Timers struct {
	delay uint8
	sound uint8
}

// Tick decrements both timers, never below zero.
func (t *Timers) Tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}

// SoundActive is the only signal given to audio: the buzzer is on while the sound timer runs.
func (t *Timers) SoundActive() bool {
	return t.sound > 0
}

func (t *Timers) Delay() uint8 { return t.delay }
func (t *Timers) Sound() uint8 { return t.sound }

func (t *Timers) SetDelay(value uint8) { t.delay = value }
func (t *Timers) SetSound(value uint8) { t.sound = value }
