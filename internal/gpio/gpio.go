// Package gpio provides the button input line with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// DefaultChip is the GPIO chip holding the header pins on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// DefaultPin is the BCM line the button is wired to (pin 37 on the header).
const DefaultPin = 26

// consumer labels requested lines in gpioinfo output.
const consumer = "button-sensor"

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
