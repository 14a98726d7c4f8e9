package gpio

import "sync"

// FakePin is a test double for a pull-up button line. It is safe for
// concurrent use so a test can drive the level while another goroutine scans.
type FakePin struct {
	mu sync.Mutex

	number int
	high   bool

	// samples contains scripted raw levels. Each Level call consumes the
	// next one; once exhausted the last sample repeats.
	samples []bool
	index   int

	pullUps int
	reads   int
}

// NewFakePin returns a released (high) fake line.
func NewFakePin(number int) *FakePin {
	return &FakePin{number: number, high: true}
}

// NewScriptedPin returns a fake line that replays samples, one per read.
func NewScriptedPin(number int, samples []bool) *FakePin {
	return &FakePin{number: number, high: true, samples: samples}
}

// Number returns the line number given at construction.
func (f *FakePin) Number() int {
	return f.number
}

// PullUp records the configuration call.
func (f *FakePin) PullUp() {
	f.mu.Lock()
	f.pullUps++
	f.mu.Unlock()
}

// Level returns the next scripted sample, or the current level if no
// script was given.
func (f *FakePin) Level() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if len(f.samples) == 0 {
		return f.high
	}
	v := f.samples[f.index]
	if f.index < len(f.samples)-1 {
		f.index++
	}
	return v
}

// Set drives the raw level.
func (f *FakePin) Set(high bool) {
	f.mu.Lock()
	f.high = high
	f.mu.Unlock()
}

// Press pulls the line low.
func (f *FakePin) Press() { f.Set(false) }

// Release lets the line float back high.
func (f *FakePin) Release() { f.Set(true) }

// PullUps returns how many times PullUp was called.
func (f *FakePin) PullUps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pullUps
}

// Reads returns how many times Level was called.
func (f *FakePin) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Reset rewinds the script and clears counters.
func (f *FakePin) Reset() {
	f.mu.Lock()
	f.index = 0
	f.pullUps = 0
	f.reads = 0
	f.mu.Unlock()
}
