//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/zap"
)

// RealPin reads a button line from actual hardware using the Linux GPIO
// character device.
type RealPin struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	number int
	log    *zap.SugaredLogger

	// read returns the raw line value; line.Value outside of tests.
	read func() (int, error)

	// last good level, returned when a read fails
	last bool
	// failing is set while reads keep failing; only the first failure
	// and the recovery are logged.
	failing  bool
	failures int
}

// OpenPin requests offset on the named chip as an input with pull-up bias.
func OpenPin(chipName string, offset int, log *zap.SugaredLogger) (*RealPin, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", offset, err)
	}

	return &RealPin{
		chip:   chip,
		line:   line,
		number: offset,
		read:   line.Value,
		log:    log.Named("gpio"),
		last:   true, // released, pulled high
	}, nil
}

// Number returns the line offset.
func (p *RealPin) Number() int {
	return p.number
}

// PullUp (re)configures the line as an input with pull-up bias.
// Failures are logged; the line keeps its previous configuration.
func (p *RealPin) PullUp() {
	if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
		p.log.Warnf("reconfigure pin %d as pull-up input: %v", p.number, err)
	}
}

// Value returns the raw level of the line; true is high.
func (p *RealPin) Value() (bool, error) {
	v, err := p.read()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", p.number, err)
	}
	return v != 0, nil
}

// Level returns the raw level of the line. A failed read is logged and the
// last good level is returned, so a read fault never looks like a bounce.
func (p *RealPin) Level() bool {
	high, err := p.Value()
	if err != nil {
		if !p.failing {
			p.failing = true
			p.log.Errorf("%v (holding %s until reads recover)", err, levelString(p.last))
		}
		p.failures++
		return p.last
	}
	if p.failing {
		p.log.Infof("pin %d reads recovered after %d failures", p.number, p.failures)
		p.failing = false
		p.failures = 0
	}
	p.last = high
	return high
}

// Close releases GPIO resources.
// Reconfigures the line to input with pull-down (matching Pi boot defaults)
// before closing to leave a clean state for shutdown/reboot.
func (p *RealPin) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", p.number, err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", p.number, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
