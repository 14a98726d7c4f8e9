// Package button turns the raw level of a pull-up wired pushbutton into
// debounced press, release and hold events.
//
// Scan samples the pin and advances the state machine. It is meant to be
// called from a single goroutine as often as possible. Down, Up and Hold
// consume sticky one-shot flags and may be called concurrently with Scan.
package button

import "sync/atomic"

// Default thresholds in milliseconds.
const (
	DefaultDebounceMs  = 20
	DefaultHoldAfterMs = 1000
)

// Pin is the input line a Button samples.
type Pin interface {
	// Number identifies the line (BCM offset on a Raspberry Pi).
	Number() int

	// PullUp configures the line as an input biased high.
	PullUp()

	// Level returns the raw electrical level; true is high.
	// A pressed button pulls the line low.
	Level() bool
}

// Button is a debounced pushbutton on a single pin.
type Button struct {
	pin Pin
	now Clock

	debounceMs  atomic.Uint32
	holdAfterMs atomic.Uint32

	// Written only by Scan.
	lastChange   uint32
	rawPrev      bool
	awaitingHold bool

	pressed      atomic.Bool
	pressedAt    atomic.Uint32
	lastDuration atomic.Uint32

	down atomic.Bool
	up   atomic.Bool
	hold atomic.Bool
}

// Option configures a Button at construction.
type Option func(*Button)

// WithClock replaces the system millisecond clock.
func WithClock(c Clock) Option {
	return func(b *Button) { b.now = c }
}

// WithDebounce sets the initial debounce time in milliseconds.
func WithDebounce(ms uint32) Option {
	return func(b *Button) { b.debounceMs.Store(ms) }
}

// WithHoldAfter sets the initial hold threshold in milliseconds.
func WithHoldAfter(ms uint32) Option {
	return func(b *Button) { b.holdAfterMs.Store(ms) }
}

// New configures pin as a pull-up input and returns a Button reading it.
func New(pin Pin, opts ...Option) *Button {
	b := &Button{pin: pin}
	b.debounceMs.Store(DefaultDebounceMs)
	b.holdAfterMs.Store(DefaultHoldAfterMs)
	for _, opt := range opts {
		opt(b)
	}
	if b.now == nil {
		b.now = SystemClock()
	}
	pin.PullUp()
	return b
}

// Pin returns the number of the line this button reads.
func (b *Button) Pin() int {
	return b.pin.Number()
}

// Debounce returns the debounce time in milliseconds.
func (b *Button) Debounce() uint32 {
	return b.debounceMs.Load()
}

// SetDebounce changes the debounce time. Zero disables debouncing.
func (b *Button) SetDebounce(ms uint32) {
	b.debounceMs.Store(ms)
}

// HoldAfter returns the hold threshold in milliseconds.
func (b *Button) HoldAfter() uint32 {
	return b.holdAfterMs.Load()
}

// SetHoldAfter changes how long a press must last before Hold fires.
func (b *Button) SetHoldAfter(ms uint32) {
	b.holdAfterMs.Store(ms)
}

// Scan samples the pin once and advances the state machine.
//
// Any raw change restarts the debounce window, so a level is only accepted
// after it has been stable for a full debounce time. At most one of press,
// release or hold is detected per call.
func (b *Button) Scan() {
	active := !b.pin.Level()
	if active != b.rawPrev {
		b.lastChange = b.now()
		b.rawPrev = active
		return
	}

	// Unsigned subtraction stays correct across a clock wrap.
	if b.now()-b.lastChange < b.debounceMs.Load() {
		return
	}

	pressed := b.pressed.Load()
	switch {
	case active && !pressed:
		b.pressedAt.Store(b.lastChange)
		b.pressed.Store(true)
		b.awaitingHold = true
		b.down.Store(true)
	case !active && pressed:
		b.lastDuration.Store(b.lastChange - b.pressedAt.Load())
		b.pressed.Store(false)
		b.awaitingHold = false
		b.up.Store(true)
	case b.awaitingHold && b.PressTime() >= b.holdAfterMs.Load():
		b.awaitingHold = false
		b.hold.Store(true)
	}
}

// Down reports whether a press was accepted since the last call.
// Reading clears the flag.
func (b *Button) Down() bool {
	return b.down.Swap(false)
}

// Up reports whether a release was accepted since the last call.
// Reading clears the flag.
func (b *Button) Up() bool {
	return b.up.Swap(false)
}

// Hold reports whether the current or last press crossed the hold
// threshold since the last call. Reading clears the flag.
func (b *Button) Hold() bool {
	return b.hold.Swap(false)
}

// PressTime returns how long the button has been held in milliseconds.
// After release it returns the duration of the last press until the next
// press is accepted.
func (b *Button) PressTime() uint32 {
	if b.pressed.Load() {
		return b.now() - b.pressedAt.Load()
	}
	return b.lastDuration.Load()
}

// LastPressDuration returns the duration of the most recently released
// press, or zero before the first release. Unlike PressTime it does not
// switch to the live value while a new press is held.
func (b *Button) LastPressDuration() uint32 {
	return b.lastDuration.Load()
}

// IsDown reports the debounced state.
func (b *Button) IsDown() bool {
	return b.pressed.Load()
}
