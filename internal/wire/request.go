// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"strconv"
	"strings"
)

// RequestMessage accumulates the ordered field sequence of an outbound
// request frame. Fields are pushed in wire order; Encode joins them
// with NUL terminators ready for length-prefixing by WriteFrame.
type RequestMessage struct {
	fields []string
}

// NewRequest starts a request frame tagged with the given outgoing
// message type.
func NewRequest(messageType OutgoingMessageType) *RequestMessage {
	m := &RequestMessage{fields: make([]string, 0, 16)}
	m.PushInt(int32(messageType))
	return m
}

// PushInt appends a required int32 field.
func (m *RequestMessage) PushInt(v int32) *RequestMessage {
	m.fields = append(m.fields, strconv.FormatInt(int64(v), 10))
	return m
}

// PushOptionalInt appends an optional int32 field: the empty string
// when absent, the sentinel's decimal form otherwise untouched.
func (m *RequestMessage) PushOptionalInt(v int32, ok bool) *RequestMessage {
	if !ok {
		m.fields = append(m.fields, "")
		return m
	}
	return m.PushInt(v)
}

// PushLong appends a required int64 field.
func (m *RequestMessage) PushLong(v int64) *RequestMessage {
	m.fields = append(m.fields, strconv.FormatInt(v, 10))
	return m
}

// PushOptionalLong appends an optional int64 field.
func (m *RequestMessage) PushOptionalLong(v int64, ok bool) *RequestMessage {
	if !ok {
		m.fields = append(m.fields, "")
		return m
	}
	return m.PushLong(v)
}

// PushBool appends a boolean field ("1" or "0").
func (m *RequestMessage) PushBool(v bool) *RequestMessage {
	if v {
		m.fields = append(m.fields, "1")
	} else {
		m.fields = append(m.fields, "0")
	}
	return m
}

// PushString appends a string field verbatim.
func (m *RequestMessage) PushString(v string) *RequestMessage {
	m.fields = append(m.fields, v)
	return m
}

// PushDouble appends a required float64 field.
func (m *RequestMessage) PushDouble(v float64) *RequestMessage {
	m.fields = append(m.fields, strconv.FormatFloat(v, 'g', -1, 64))
	return m
}

// PushOptionalDouble appends an optional float64 field: the empty
// string when absent.
func (m *RequestMessage) PushOptionalDouble(v float64, ok bool) *RequestMessage {
	if !ok {
		m.fields = append(m.fields, "")
		return m
	}
	return m.PushDouble(v)
}

// Fields returns the accumulated field slice. Used by tests that want
// to assert on individual positions without round-tripping Encode.
func (m *RequestMessage) Fields() []string {
	return m.fields
}

// Encode joins the fields with NUL separators and appends a trailing
// NUL, producing the unframed payload WriteFrame length-prefixes.
func (m *RequestMessage) Encode() []byte {
	var b strings.Builder
	for _, f := range m.fields {
		b.WriteString(f)
		b.WriteByte(0)
	}
	return []byte(b.String())
}
