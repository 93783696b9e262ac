package atclient

// Mode selects one of the three dispatch disciplines, fixed at
// construction and read per Send.
type Mode int

const (
	// Blocking polls the response queue to completion; no response
	// timer is armed.
	Blocking Mode = iota
	// NonBlocking performs exactly one poll of the response queue per
	// call and never spins.
	NonBlocking
	// BoundedTimeout arms a per-command timer at MaxTimeoutMs and
	// polls until either a frame arrives or the timer elapses.
	BoundedTimeout
)

func (m Mode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case NonBlocking:
		return "non-blocking"
	case BoundedTimeout:
		return "bounded-timeout"
	default:
		return "unknown"
	}
}

// Config is immutable after construction.
type Config struct {
	// Mode selects the dispatch discipline.
	Mode Mode
	// CmdCooldownMs is the minimum quiet period after any response or
	// URC before the next command may be written.
	CmdCooldownMs uint32
}

// DefaultConfig returns a Config for the given mode with a
// conservative 20ms cooldown, tunable by setting CmdCooldownMs on the
// returned value before passing it to New.
func DefaultConfig(mode Mode) Config {
	return Config{Mode: mode, CmdCooldownMs: 20}
}
