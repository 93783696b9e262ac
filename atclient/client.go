// Package atclient implements the client-side request/response engine
// for command/response line protocols of the AT style. It is a
// single-threaded, cooperative state machine that serializes one
// command at a time over a transport writer, coordinates with an
// ingress side through lock-free SPSC queues, enforces a cooldown
// between transactions, and dispatches in one of three modes.
package atclient

import (
	"io"
	"log"

	"atgo/atcmd"
	"atgo/serialio"
	"atgo/spsc"
)

// State is the client's position in its one protocol turn. It
// cycles: there is no terminal state.
type State int

const (
	// Idle means no command is in flight.
	Idle State = iota
	// AwaitingResponse means the client has written a command and is
	// waiting for the ingress side to deliver a result.
	AwaitingResponse
)

func (s State) String() string {
	if s == AwaitingResponse {
		return "awaiting-response"
	}
	return "idle"
}

// Client owns the transport writer, the cooldown timer, and its ends
// of the three SPSC queues for the lifetime of one serial session. It
// is not safe for concurrent use by more than one goroutine, and only
// one Client may drive a given serial link.
type Client struct {
	tx    serialio.Writer
	timer serialio.Timer

	resC spsc.ResponseConsumer
	urcC spsc.URCConsumer
	comP spsc.CommandProducer

	state  State
	config Config
	logger *log.Logger
}

// New constructs a Client from all of its collaborators. The timer
// must behave as already elapsed so the first command is not delayed.
func New(tx serialio.Writer, timer serialio.Timer, resC spsc.ResponseConsumer, urcC spsc.URCConsumer, comP spsc.CommandProducer, config Config) *Client {
	return &Client{
		tx:     tx,
		timer:  timer,
		resC:   resC,
		urcC:   urcC,
		comP:   comP,
		state:  Idle,
		config: config,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger enables best-effort logging of dropped control signals.
// Logging is silent by default.
func (c *Client) SetLogger(l *log.Logger) { c.logger = l }

// State returns the client's current protocol state.
func (c *Client) State() State { return c.state }

// Mode returns the configured dispatch mode.
func (c *Client) Mode() Mode { return c.config.Mode }

// Send drives the Idle to AwaitingResponse emission the first time
// it's called for a given command, then dispatches per the
// configured Mode. If the client is already AwaitingResponse,
// emission is skipped entirely and this call only re-polls the
// in-flight turn: repeated calls with the same command while
// AwaitingResponse never re-emit bytes.
func (c *Client) Send(cmd atcmd.Cmd) (any, error) {
	if c.state == Idle {
		if cmd.ForceReceiveState() {
			if !c.comP.Enqueue(spsc.ControlCommand{Tag: spsc.ForceReceiveState}) {
				c.logger.Printf("atclient: command queue full, dropped ForceState hint")
			}
		}

		// The only unconditionally blocking point inside emission:
		// wait out the cooldown armed by the previous response or URC.
		for !c.timer.Wait() {
		}

		if err := c.writeAll(cmd.Serialize()); err != nil {
			return nil, err
		}

		c.state = AwaitingResponse

		if c.config.Mode == BoundedTimeout {
			c.timer.Start(cmd.MaxTimeoutMs())
		}
	}

	if c.config.Mode == NonBlocking {
		return c.CheckResponse(cmd)
	}

	// Blocking and BoundedTimeout both poll CheckResponse to a
	// terminal outcome; BoundedTimeout's own timer check inside
	// CheckResponse is what bounds this loop.
	for {
		v, err := c.CheckResponse(cmd)
		if err == ErrWouldBlock {
			continue
		}
		return v, err
	}
}

// writeAll writes every byte of data to the transport, retrying a
// transient WriteNotReady indefinitely, then flushes.
func (c *Client) writeAll(data []byte) error {
	for _, b := range data {
		for {
			status, err := c.tx.WriteByte(b)
			if err != nil {
				return NewError(KindWrite, err)
			}
			if status == serialio.WriteOK {
				break
			}
		}
	}
	for {
		status, err := c.tx.Flush()
		if err != nil {
			return NewError(KindWrite, err)
		}
		if status == serialio.WriteOK {
			break
		}
	}
	return nil
}

// CheckResponse performs one response-check operation: dequeue a
// result if one is ready, and apply BoundedTimeout's own timeout
// check otherwise.
func (c *Client) CheckResponse(cmd atcmd.Cmd) (any, error) {
	if result, ok := c.resC.Dequeue(); ok {
		if result.Err != nil {
			// Terminal error path; the state returns to Idle on every
			// terminal error, matching the Ok-path invariant.
			c.state = Idle
			return nil, result.Err
		}

		if c.state != AwaitingResponse {
			// A stale response arrived after the turn already
			// completed (e.g. a prior Timeout). Discard it without
			// touching state or the cooldown timer.
			return nil, ErrWouldBlock
		}

		c.timer.Start(c.config.CmdCooldownMs)
		c.state = Idle
		resp, err := cmd.Parse(result.Payload.Bytes())
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	if c.config.Mode == BoundedTimeout && c.timer.Wait() {
		c.state = Idle
		if !c.comP.Enqueue(spsc.ControlCommand{Tag: spsc.ClearBuffer}) {
			c.logger.Printf("atclient: command queue full, dropped ClearBuffer hint")
		}
		return nil, NewError(KindTimeout, nil)
	}

	return nil, ErrWouldBlock
}

// CheckURC performs one URC-check operation. It never changes client
// state: URC handling is orthogonal to the command turn and may
// occur while AwaitingResponse. ok is false both when no URC was
// queued and when the queued URC failed to parse.
func (c *Client) CheckURC(urc atcmd.Urc) (value any, ok bool) {
	if !c.urcC.Ready() {
		return nil, false
	}

	payload := c.urcC.DequeueUnchecked()
	// A physical frame was consumed off the link either way, so the
	// cooldown is armed regardless of parse success.
	c.timer.Start(c.config.CmdCooldownMs)

	v, err := urc.Parse(payload.Bytes())
	if err != nil {
		return nil, false
	}
	return v, true
}
