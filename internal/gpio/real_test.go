//go:build linux

package gpio

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// scriptedLine replays values; a nil error slot means a good read.
type scriptedLine struct {
	values []int
	errs   []error
	i      int
}

func (s *scriptedLine) Value() (int, error) {
	i := s.i
	s.i++
	return s.values[i], s.errs[i]
}

func newTestRealPin(line *scriptedLine) (*RealPin, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return &RealPin{
		number: DefaultPin,
		log:    zap.New(core).Sugar(),
		read:   line.Value,
		last:   true,
	}, logs
}

func TestRealPinLevelHoldsLastGoodLevelOnError(t *testing.T) {
	errRead := errors.New("device busy")
	line := &scriptedLine{
		values: []int{0, 1, 1},
		errs:   []error{nil, errRead, nil},
	}
	p, _ := newTestRealPin(line)

	if p.Level() {
		t.Fatal("first read: got high, want low")
	}
	if p.Level() {
		t.Error("failed read: got high, want last good level (low)")
	}
	if !p.Level() {
		t.Error("recovered read: got low, want high")
	}
}

func TestRealPinLogsOncePerFailureEpisode(t *testing.T) {
	errRead := errors.New("device busy")
	line := &scriptedLine{}
	add := func(n int, err error) {
		for i := 0; i < n; i++ {
			line.values = append(line.values, 1)
			line.errs = append(line.errs, err)
		}
	}
	add(3, nil)
	add(1000, errRead) // a second of 1ms scans
	add(5, nil)
	add(200, errRead)
	add(1, nil)

	p, logs := newTestRealPin(line)
	for range line.values {
		p.Level()
	}

	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 2 {
		t.Errorf("expected 1 error per failure episode (2), got %d", n)
	}
	recovered := logs.FilterMessageSnippet("recovered").All()
	if len(recovered) != 2 {
		t.Fatalf("expected 2 recovery messages, got %d", len(recovered))
	}
	if got := recovered[0].Message; got != "pin 26 reads recovered after 1000 failures" {
		t.Errorf("recovery message: %q", got)
	}
	if p.failing || p.failures != 0 {
		t.Errorf("state after recovery: failing=%v failures=%d", p.failing, p.failures)
	}
}

func TestRealPinValueWrapsError(t *testing.T) {
	errRead := errors.New("device busy")
	p, _ := newTestRealPin(&scriptedLine{values: []int{0}, errs: []error{errRead}})

	if _, err := p.Value(); !errors.Is(err, errRead) {
		t.Errorf("Value error: got %v, want wrapping %v", err, errRead)
	}
}
