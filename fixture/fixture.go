// Package fixture provides one hand-written command/response/URC set
// used by atclient's tests and by cmd/atcli's demo session. It plays
// the role a schema-derivation step would otherwise play: each type
// below implements atcmd.Cmd or atcmd.Urc directly, the way generated
// code would, using atcmd's codec helpers.
package fixture

import (
	"bytes"
	"fmt"

	"atgo/atclient"
	"atgo/atcmd"
)

// Functionality is the +CFUN/+FUN functionality argument.
type Functionality uint8

const (
	Min  Functionality = 0
	Full Functionality = 1
	APM  Functionality = 4
	DM   Functionality = 6
)

// ResetMode is the +CFUN/+FUN reset argument.
type ResetMode uint8

const (
	DontReset ResetMode = 0
	Reset     ResetMode = 1
)

// NoResponse is the response value for commands that carry no
// payload fields.
type NoResponse struct{}

// SetModuleFunctionality is the +CFUN command, with positions
// declared in field order: fun@0, rst@1.
type SetModuleFunctionality struct {
	Fun Functionality
	Rst *ResetMode
}

func (c SetModuleFunctionality) Serialize() []byte {
	if c.Rst != nil {
		return []byte(fmt.Sprintf("AT+CFUN=%d,%d\r\n", c.Fun, *c.Rst))
	}
	return []byte(fmt.Sprintf("AT+CFUN=%d\r\n", c.Fun))
}

func (c SetModuleFunctionality) MaxTimeoutMs() uint32 { return 180000 }
func (c SetModuleFunctionality) ForceReceiveState() bool { return false }
func (c SetModuleFunctionality) Parse(_ []byte) (any, error) {
	return NoResponse{}, nil
}

// ReverseFunctionality is the +FUN command. It carries the same two
// arguments as SetModuleFunctionality but with their declared
// positions reversed (rst@0, fun@1), to show that wire order follows
// declared position, not field order.
type ReverseFunctionality struct {
	Fun Functionality
	Rst *ResetMode
}

func (c ReverseFunctionality) Serialize() []byte {
	var rst ResetMode
	if c.Rst != nil {
		rst = *c.Rst
	}
	return []byte(fmt.Sprintf("AT+FUN=%d,%d\r\n", rst, c.Fun))
}

func (c ReverseFunctionality) MaxTimeoutMs() uint32 { return 180000 }
func (c ReverseFunctionality) ForceReceiveState() bool { return false }
func (c ReverseFunctionality) Parse(_ []byte) (any, error) {
	return NoResponse{}, nil
}

// QueryCUN is the +CUN command. Its response schema declares data@0
// (quoted string), socket@1 (u8), length@2 (usize), exercising the
// mixed numeric/string positional order where the string field comes
// first on the wire.
type QueryCUN struct {
	Fun Functionality
	Rst *ResetMode
}

func (c QueryCUN) Serialize() []byte {
	if c.Rst != nil {
		return []byte(fmt.Sprintf("AT+CUN=%d,%d\r\n", c.Fun, *c.Rst))
	}
	return []byte(fmt.Sprintf("AT+CUN=%d\r\n", c.Fun))
}

func (c QueryCUN) MaxTimeoutMs() uint32    { return 180000 }
func (c QueryCUN) ForceReceiveState() bool { return false }

// TestResponseString is QueryCUN's response value.
type TestResponseString struct {
	Socket uint8
	Length uint64
	Data   string
}

func (c QueryCUN) Parse(payload []byte) (any, error) {
	fields := atcmd.ParseFields(payload)

	data, err := atcmd.FieldString(fields, 0)
	if err != nil {
		return nil, atclient.NewError(atclient.KindParseString, err)
	}
	socket, err := atcmd.FieldUint(fields, 1, 8)
	if err != nil {
		return nil, atclient.NewError(atclient.KindInvalidResponse, err)
	}
	length, err := atcmd.FieldUint(fields, 2, 64)
	if err != nil {
		return nil, atclient.NewError(atclient.KindInvalidResponse, err)
	}

	return TestResponseString{Socket: uint8(socket), Length: length, Data: data}, nil
}

// QueryCDATA is the +CDATA command. Unlike QueryCUN, its response
// schema declares the quoted string last: socket@0 (u8), length@1
// (usize), data@2 (quoted string). This is the schema an unquoted
// trailing field actually violates.
type QueryCDATA struct {
	Fun Functionality
	Rst *ResetMode
}

func (c QueryCDATA) Serialize() []byte {
	if c.Rst != nil {
		return []byte(fmt.Sprintf("AT+CDATA=%d,%d\r\n", c.Fun, *c.Rst))
	}
	return []byte(fmt.Sprintf("AT+CDATA=%d\r\n", c.Fun))
}

func (c QueryCDATA) MaxTimeoutMs() uint32    { return 180000 }
func (c QueryCDATA) ForceReceiveState() bool { return false }

func (c QueryCDATA) Parse(payload []byte) (any, error) {
	fields := atcmd.ParseFields(payload)

	socket, err := atcmd.FieldUint(fields, 0, 8)
	if err != nil {
		return nil, atclient.NewError(atclient.KindInvalidResponse, err)
	}
	length, err := atcmd.FieldUint(fields, 1, 64)
	if err != nil {
		return nil, atclient.NewError(atclient.KindInvalidResponse, err)
	}
	data, err := atcmd.FieldString(fields, 2)
	if err != nil {
		return nil, atclient.NewError(atclient.KindParseString, err)
	}

	return TestResponseString{Socket: uint8(socket), Length: length, Data: data}, nil
}

// MessageWaitingIndication is the +UMWI URC variant.
type MessageWaitingIndication struct {
	Status uint8
	Code   uint8
}

// Urc dispatches a payload to the one URC variant this fixture set
// declares, by its +UMWI tag.
type Urc struct{}

func (Urc) Parse(payload []byte) (any, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("+UMWI")) {
		return nil, fmt.Errorf("fixture: unrecognized URC tag in %q", payload)
	}

	fields := atcmd.ParseFields(payload)
	status, err := atcmd.FieldUint(fields, 0, 8)
	if err != nil {
		return nil, err
	}
	code, err := atcmd.FieldUint(fields, 1, 8)
	if err != nil {
		return nil, err
	}

	return MessageWaitingIndication{Status: uint8(status), Code: uint8(code)}, nil
}
