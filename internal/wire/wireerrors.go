// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
)

// These sentinels live here, rather than in the parent package, so
// that internal/decoders can report them without importing the parent
// package back — the parent package's errors.go re-exports them under
// its own public names.
var (
	// ErrEndOfStream is returned by a StreamDecoder.Decode when the
	// frame it just consumed is the stream's terminal marker (e.g.
	// OpenOrderEnd). Subscription.Next translates this into (zero,
	// false, nil) rather than surfacing it as an error.
	ErrEndOfStream = errors.New("wire: end of stream")

	// ErrNotImplemented is returned by CancelMessage for decoders
	// backing one-shot requests that the protocol has no cancel frame
	// for.
	ErrNotImplemented = errors.New("wire: not implemented")
)

// UnexpectedResponseError reports that a decoder received a frame
// whose message type is not in its RESPONSE_MESSAGE_IDS set.
type UnexpectedResponseError struct {
	MessageType IncomingMessageType
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("wire: unexpected response message type %d", e.MessageType)
}
