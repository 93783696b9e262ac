package atcmd

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// ErrMissingField is returned when a command's Parse references a
// position beyond the number of arguments the payload carried.
var ErrMissingField = errors.New("atcmd: missing field")

// ErrNotQuoted is returned when a field declared as a quoted string
// arrives unquoted on the wire. It is the codec-level cause a command
// wraps as atclient's ParseString error kind.
var ErrNotQuoted = errors.New("atcmd: expected quoted string")

// Field is one positional, comma-separated argument of a response or
// URC payload, with the quoting the wire text used preserved so a
// command can require a field to have been quoted.
type Field struct {
	Value  string
	Quoted bool
}

// StripPreamble removes an optional "+TAG: " preamble from a response
// or URC payload and returns the remaining argument bytes.
func StripPreamble(payload []byte) []byte {
	if !bytes.HasPrefix(bytes.TrimLeft(payload, " "), []byte("+")) {
		return payload
	}
	i := bytes.IndexByte(payload, ':')
	if i < 0 {
		return payload
	}
	return bytes.TrimLeft(payload[i+1:], " ")
}

// SplitFields splits a preamble-stripped argument list on top-level
// commas, honoring double-quoted strings: a comma inside a quoted
// field does not split it, and the surrounding quotes are stripped
// from the field's Value but remembered in its Quoted flag.
func SplitFields(args []byte) []Field {
	var fields []Field
	var cur []byte
	quoted := false
	sawQuote := false

	flush := func() {
		fields = append(fields, Field{Value: string(cur), Quoted: sawQuote})
		cur = cur[:0]
		sawQuote = false
	}

	for _, c := range args {
		switch {
		case c == '"':
			quoted = !quoted
			sawQuote = true
		case c == ',' && !quoted:
			flush()
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return fields
}

// ParseFields strips an optional "+TAG: " preamble and splits the
// remaining comma-separated argument list, the one operation every
// command's Parse method performs before picking out its own
// positional fields.
func ParseFields(payload []byte) []Field {
	return SplitFields(StripPreamble(payload))
}

func field(fields []Field, pos int) (Field, error) {
	if pos < 0 || pos >= len(fields) {
		return Field{}, ErrMissingField
	}
	return fields[pos], nil
}

// FieldString returns the trimmed value at pos, requiring it to have
// been wire-quoted. Returns ErrNotQuoted otherwise.
func FieldString(fields []Field, pos int) (string, error) {
	f, err := field(fields, pos)
	if err != nil {
		return "", err
	}
	if !f.Quoted {
		return "", ErrNotQuoted
	}
	return strings.TrimSpace(f.Value), nil
}

// FieldUint parses the value at pos as an unsigned integer of the
// given bit size.
func FieldUint(fields []Field, pos int, bitSize int) (uint64, error) {
	f, err := field(fields, pos)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(f.Value), 10, bitSize)
}

// FieldInt parses the value at pos as a signed integer of the given
// bit size.
func FieldInt(fields []Field, pos int, bitSize int) (int64, error) {
	f, err := field(fields, pos)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(f.Value), 10, bitSize)
}
