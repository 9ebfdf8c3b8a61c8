// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
)

// maxFrameLen bounds a single inbound payload. TWS never sends
// anything close to this; it exists to keep a corrupted length
// prefix from causing an enormous allocation.
const maxFrameLen = 64 << 20

// ReadFrame reads one length-prefixed frame from r: four bytes of
// big-endian length N, followed by exactly N bytes of payload. It
// returns the raw payload; splitting into fields is Split's job.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxFrameLen {
		return nil, &ParseError{Index: -1, Value: "", Reason: io.ErrShortBuffer}
	}
	if n == 0 {
		return []byte{}, nil
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame length-prefixes payload and writes it to w in a single
// Write call so a concurrent writer cannot interleave a partial frame.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

// Frame length-prefixes payload into a single buffer ready for
// Socket.WriteAll, so callers never hand WriteFrame's two-part output
// to a socket across two separate writes.
func Frame(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + len(payload))
	_ = WriteFrame(&buf, payload)
	return buf.Bytes()
}

// Split breaks a frame payload into NUL-delimited fields. A payload
// ending in NUL (the normal case) leaves a trailing empty field after
// splitting, which Split drops.
func Split(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	s := string(payload)
	fields := strings.Split(s, "\x00")
	// Drop the trailing empty field produced by the terminating NUL.
	if len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// IsShutdownFrame reports whether payload is the protocol's
// zero-length "server is shutting down" marker.
func IsShutdownFrame(payload []byte) bool {
	return len(payload) == 0
}
