//go:build !linux

package gpio

import (
	"errors"

	"go.uber.org/zap"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealPin is not available on non-Linux platforms.
type RealPin struct{}

// OpenPin returns an error on non-Linux platforms.
func OpenPin(chipName string, offset int, log *zap.SugaredLogger) (*RealPin, error) {
	return nil, errUnsupported
}

// Number is not implemented on non-Linux platforms.
func (p *RealPin) Number() int { return -1 }

// PullUp is not implemented on non-Linux platforms.
func (p *RealPin) PullUp() {}

// Value is not implemented on non-Linux platforms.
func (p *RealPin) Value() (bool, error) {
	return true, errUnsupported
}

// Level always reports released (high) on non-Linux platforms.
func (p *RealPin) Level() bool { return true }

// Close is not implemented on non-Linux platforms.
func (p *RealPin) Close() error {
	return nil
}
