// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"io"
	"net"
)

// IsConnectionError reports whether err is a socket-level failure that
// should trigger a reconnect attempt: a reset, an abort, an unexpected
// EOF, a broken pipe, or a refused/closed connection. Plain read
// timeouts are excluded — those are IsTimeoutError's concern.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return !netErr.Timeout()
	}
	// Anything else reaching here (malformed frame length, etc.) is not
	// a transport-level failure and should not trigger a reconnect.
	return false
}

// IsTimeoutError reports whether err is a read-timeout-shaped error
// that the dispatcher should silently retry rather than treat as a
// connection failure.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
