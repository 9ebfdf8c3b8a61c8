// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Sentinel field values. The wire protocol has no native "absent"
// representation for numeric fields, so it reserves these out-of-band
// values to mean "unset" instead.
const (
	UnsetInt      = int32(2147483647)
	UnsetLong     = int64(9223372036854775807)
	unsetDoubleStr = "1.7976931348623157E308"
	infinityStr    = "Infinity"
)

// UnsetDouble is the sentinel double value meaning "absent".
var UnsetDouble = math.MaxFloat64

// ParseError reports that a field could not be decoded as the
// requested type. It carries the field's position so callers can
// point at the offending byte range of the frame.
type ParseError struct {
	Index  int
	Value  string
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wire: parse error at field %d (%q): %v", e.Index, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// Frame is a parsed, cursor-addressed inbound response. Fields are
// consumed positionally: each NextX call advances the cursor by one
// field; PeekX reads ahead without advancing.
type Frame struct {
	Fields []string
	cursor int
}

// NewFrame wraps a raw field vector (as produced by Split) into a
// cursor-addressed Frame ready for decoding.
func NewFrame(fields []string) *Frame {
	return &Frame{Fields: fields}
}

// MessageType returns the frame's leading tag, or NotValid if the
// frame is empty or the tag does not parse as an integer.
func (f *Frame) MessageType() IncomingMessageType {
	if len(f.Fields) == 0 {
		return NotValid
	}
	n, err := strconv.ParseInt(f.Fields[0], 10, 32)
	if err != nil {
		return NotValid
	}
	return IncomingMessageType(n)
}

// RequestID returns the frame's request id, if this message type
// carries one at a known position.
func (f *Frame) RequestID() (int32, bool) {
	i, ok := requestIDIndex(f.MessageType())
	if !ok || i >= len(f.Fields) {
		return 0, false
	}
	v, err := f.PeekInt(i)
	if err != nil {
		return 0, false
	}
	return v, true
}

// OrderID returns the frame's order id, if this message type carries
// one at a known position.
func (f *Frame) OrderID() (int32, bool) {
	i, ok := orderIDIndex(f.MessageType())
	if !ok || i >= len(f.Fields) {
		return 0, false
	}
	v, err := f.PeekInt(i)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExecutionID returns the frame's execution id, if this message type
// carries one at a known position.
func (f *Frame) ExecutionID() (string, bool) {
	i, ok := executionIDIndex(f.MessageType())
	if !ok || i >= len(f.Fields) {
		return "", false
	}
	return f.Fields[i], true
}

// Clone returns an independent copy of f with its cursor rewound to
// the start. The router hands the same inbound frame to more than one
// destination (a shared channel with several subscribers, or both an
// order-update stream and its owning request/order channel); each
// destination needs its own cursor so one reader's Next calls don't
// consume fields out from under another's.
func (f *Frame) Clone() *Frame {
	fields := make([]string, len(f.Fields))
	copy(fields, f.Fields)
	return &Frame{Fields: fields}
}

// Skip advances the cursor by one field without decoding it.
func (f *Frame) Skip() { f.cursor++ }

// Reset rewinds the cursor to the first field.
func (f *Frame) Reset() { f.cursor = 0 }

// Remaining reports how many fields are left to consume.
func (f *Frame) Remaining() int { return len(f.Fields) - f.cursor }

func (f *Frame) field() (string, int, error) {
	if f.cursor >= len(f.Fields) {
		return "", f.cursor, fmt.Errorf("wire: read past end of frame (%d fields)", len(f.Fields))
	}
	i := f.cursor
	f.cursor++
	return f.Fields[i], i, nil
}

// NextInt decodes the next field as a required int32.
func (f *Frame) NextInt() (int32, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &ParseError{Index: i, Value: s, Reason: err}
	}
	return int32(n), nil
}

// NextOptionalInt decodes the next field as an optional int32. An
// empty field or the UnsetInt sentinel both decode to (0, false).
func (f *Frame) NextOptionalInt() (int32, bool, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false, &ParseError{Index: i, Value: s, Reason: err}
	}
	if int32(n) == UnsetInt {
		return 0, false, nil
	}
	return int32(n), true, nil
}

// NextLong decodes the next field as a required int64.
func (f *Frame) NextLong() (int64, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ParseError{Index: i, Value: s, Reason: err}
	}
	return n, nil
}

// NextOptionalLong decodes the next field as an optional int64.
func (f *Frame) NextOptionalLong() (int64, bool, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, &ParseError{Index: i, Value: s, Reason: err}
	}
	if n == UnsetLong {
		return 0, false, nil
	}
	return n, true, nil
}

// NextBool decodes the next field as a boolean ("1" is true, anything
// else — including an empty field — is false).
func (f *Frame) NextBool() (bool, error) {
	s, _, err := f.field()
	if err != nil {
		return false, err
	}
	return s == "1", nil
}

// NextString decodes the next field as a string, verbatim.
func (f *Frame) NextString() (string, error) {
	s, _, err := f.field()
	if err != nil {
		return "", err
	}
	return s, nil
}

// NextDouble decodes the next field as a required float64. An empty,
// "0", or "0.0" field decodes to 0.0 per the wire format's convention
// for required doubles.
func (f *Frame) NextDouble() (float64, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, err
	}
	if s == "" || s == "0" || s == "0.0" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Index: i, Value: s, Reason: err}
	}
	return v, nil
}

// NextOptionalDouble decodes the next field as an optional float64.
// The sentinel decodes to absent; the literal "Infinity" decodes to
// +Inf.
func (f *Frame) NextOptionalDouble() (float64, bool, error) {
	s, i, err := f.field()
	if err != nil {
		return 0, false, err
	}
	if s == "" || s == unsetDoubleStr {
		return 0, false, nil
	}
	if s == infinityStr {
		return math.Inf(1), true, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, &ParseError{Index: i, Value: s, Reason: err}
	}
	return v, true, nil
}

// NextTime decodes the next field as a Unix-epoch-seconds timestamp.
func (f *Frame) NextTime() (time.Time, error) {
	s, i, err := f.field()
	if err != nil {
		return time.Time{}, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, &ParseError{Index: i, Value: s, Reason: err}
	}
	return time.Unix(n, 0).UTC(), nil
}

// PeekInt reads field i without advancing the cursor.
func (f *Frame) PeekInt(i int) (int32, error) {
	if i < 0 || i >= len(f.Fields) {
		return 0, fmt.Errorf("wire: peek index %d out of range (%d fields)", i, len(f.Fields))
	}
	n, err := strconv.ParseInt(f.Fields[i], 10, 32)
	if err != nil {
		return 0, &ParseError{Index: i, Value: f.Fields[i], Reason: err}
	}
	return int32(n), nil
}

// PeekString reads field i without advancing the cursor.
func (f *Frame) PeekString(i int) (string, error) {
	if i < 0 || i >= len(f.Fields) {
		return "", fmt.Errorf("wire: peek index %d out of range (%d fields)", i, len(f.Fields))
	}
	return f.Fields[i], nil
}
