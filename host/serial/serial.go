// Package serial abstracts the link between the host tooling and a board
// running tickmux firmware.
package serial

import (
	"io"
)

// Port represents a serial port. The abstraction keeps the monitor
// testable: tests feed it an in-memory implementation instead of hardware.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3").
	Device string

	// Baud rate. USB CDC boards ignore it, UART bridges do not.
	Baud int

	// Read timeout in milliseconds (0 = blocking).
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the demo firmware's
// USB CDC console.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 0, // stat lines arrive once a second; block for them
	}
}
