// Package atcmd declares the capability set a command or URC type
// must provide to be driven by atclient.Client. A code-generation
// step is expected to produce these instances from a declarative
// schema; this package only declares the interface that machinery
// would produce, plus one hand-written default codec (codec.go) that
// plays the role the generated code would otherwise play.
package atcmd

// Cmd is a typed AT-style command value. The host builds one, hands
// it to the client, and gets back a typed response.
type Cmd interface {
	// Serialize returns the wire bytes for this command, including the
	// trailing "\r\n" terminator.
	Serialize() []byte

	// MaxTimeoutMs bounds bounded-timeout dispatch for this command.
	MaxTimeoutMs() uint32

	// ForceReceiveState reports whether the ingress parser should be
	// told to treat subsequent bytes as a response even without a
	// matching command echo.
	ForceReceiveState() bool

	// Parse decodes a response payload into this command's response
	// value. A parse error is terminal for the turn.
	Parse(payload []byte) (any, error)
}

// Urc is a typed unsolicited notification variant set. Parsing
// dispatches on the payload's leading "+TAG" discriminator and
// decodes the remaining arguments the same way a response does.
type Urc interface {
	// Parse decodes a URC payload into a tagged variant value, or
	// returns an error if the tag or arguments are unrecognized.
	Parse(payload []byte) (any, error)
}
