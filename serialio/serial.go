//go:build !wasm

package serialio

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Config holds serial port configuration, the same fields
// host/serial/serial.go's Config carries.
type Config struct {
	// Device is the device path (e.g. "/dev/ttyACM0", "COM3").
	Device string
	// Baud is the baud rate.
	Baud int
	// ReadTimeoutMs is the read timeout in milliseconds (0 = blocking).
	ReadTimeoutMs int
}

// DefaultConfig returns a default configuration for a modem-style
// link at 115200 baud, the AT-command world's usual default.
func DefaultConfig(device string) Config {
	return Config{Device: device, Baud: 115200, ReadTimeoutMs: 100}
}

// SerialTransport implements Writer over a real OS serial port via
// github.com/tarm/serial, mirroring host/serial/serial_native.go's
// NativePort.
type SerialTransport struct {
	port *serial.Port
}

// Open opens a native serial port for writing.
func Open(cfg Config) (*SerialTransport, error) {
	sc := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
	}
	port, err := serial.OpenPort(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &SerialTransport{port: port}, nil
}

// WriteByte writes a single byte to the serial port. tarm/serial's
// Write blocks until the OS accepts the data, so this implementation
// never reports WriteNotReady; a higher-layer HAL that can signal a
// full output buffer would return it instead of blocking.
func (t *SerialTransport) WriteByte(b byte) (WriteStatus, error) {
	n, err := t.port.Write([]byte{b})
	if err != nil {
		return WriteOK, err
	}
	if n != 1 {
		return WriteOK, fmt.Errorf("short write: wrote %d of 1 byte", n)
	}
	return WriteOK, nil
}

// Flush is a no-op: tarm/serial has no separate flush call and
// Write already blocks until accepted, the same rationale
// host/serial/serial_native.go's Flush documents.
func (t *SerialTransport) Flush() (WriteStatus, error) {
	return WriteOK, nil
}

// Reader exposes the underlying port for a host-supplied ingress
// reader. atclient itself never reads from the transport; framing
// response and URC lines off the wire is the ingress side's job.
func (t *SerialTransport) Reader() io.Reader { return t.port }

// Close closes the underlying serial port.
func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}
