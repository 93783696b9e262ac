// Package serialio declares the two external collaborators
// atclient.Client depends on, a transport writer and a countdown
// timer, and provides one real implementation of each: a serial port
// wrapping github.com/tarm/serial, and a wall-clock timer wrapping
// time.Time.
package serialio

// WriteStatus is the outcome of one Writer operation.
type WriteStatus int

const (
	// WriteOK means the byte (or buffered data, for Flush) was
	// accepted.
	WriteOK WriteStatus = iota
	// WriteNotReady is a transient condition the client retries
	// indefinitely: the sink cannot accept the byte right now, but
	// isn't broken.
	WriteNotReady
)

// Writer is the transport writer external collaborator: a byte sink
// with blocking semantics that may report transient "not ready" or
// terminal write errors.
type Writer interface {
	// WriteByte attempts to write a single byte.
	WriteByte(b byte) (WriteStatus, error)
	// Flush ensures all previously-written bytes have left the sink.
	Flush() (WriteStatus, error)
}

// Timer is the countdown timer external collaborator: supports
// starting a countdown of a given duration and polling whether it has
// elapsed. A freshly constructed Timer must behave as if already
// elapsed, so the first command is not delayed.
type Timer interface {
	// Start arms the timer for durationMs milliseconds.
	Start(durationMs uint32)
	// Wait reports whether the timer has elapsed.
	Wait() bool
}
