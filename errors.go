// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"errors"
	"fmt"

	"code.hybscloud.com/twsbus/internal/wire"
)

var (
	// ErrConnectionFailed reports that reconnect gave up after its
	// attempt cap; the bus has entered shutdown.
	ErrConnectionFailed = errors.New("twsbus: reconnect attempts exhausted")

	// ErrConnectionReset reports that a reconnect succeeded mid-call.
	// It is delivered to every outstanding subscription exactly once;
	// callers must re-issue their requests.
	ErrConnectionReset = errors.New("twsbus: connection reset, reconnected")

	// ErrShutdown reports that the bus is shutting down. It is
	// delivered to every outstanding subscription and is terminal.
	ErrShutdown = errors.New("twsbus: bus is shutting down")

	// ErrCancelled reports that a subscription was explicitly
	// cancelled. It is terminal for that subscription only.
	ErrCancelled = errors.New("twsbus: subscription cancelled")

	// ErrEndOfStream reports that a decoder observed a terminal frame
	// (e.g. OpenOrderEnd). Subscription.Next converts this to (zero, false).
	// Decoders report it via wire.ErrEndOfStream so internal/decoders
	// doesn't need to import this package back.
	ErrEndOfStream = wire.ErrEndOfStream

	// ErrUnexpectedEndOfStream reports a socket EOF without a terminal
	// frame having been seen first. Surfaced once, then treated as end
	// of stream.
	ErrUnexpectedEndOfStream = errors.New("twsbus: unexpected end of stream")

	// ErrNotImplemented reports that an operation — typically
	// cancelling a one-shot, non-cancellable subscription, or invoking
	// a domain call this module does not ship a decoder for — has no
	// defined behavior.
	ErrNotImplemented = wire.ErrNotImplemented

	// ErrAlreadySubscribed reports a second attempt to open the
	// singleton order-update sink while one is already live.
	ErrAlreadySubscribed = errors.New("twsbus: order update stream already subscribed")

	// ErrInvalidArgument reports that the caller violated a precondition,
	// e.g. an empty required field.
	ErrInvalidArgument = errors.New("twsbus: invalid argument")
)

// UnexpectedResponseError reports that a decoder received a frame
// whose message type is not in its RESPONSE_MESSAGE_IDS set.
type UnexpectedResponseError = wire.UnexpectedResponseError

// ServerVersionError reports that a requested feature needs a higher
// negotiated protocol version than the server offered.
type ServerVersionError struct {
	Required int
	Actual   int
	Feature  string
}

func (e *ServerVersionError) Error() string {
	return fmt.Sprintf("twsbus: feature %q requires server version %d, connected at %d", e.Feature, e.Required, e.Actual)
}

// MessageError reports a server-emitted error frame routed to a
// specific subscription (request id or order id). Warning-band codes
// never reach here — the router suppresses them before delivery.
type MessageError struct {
	Code int32
	Text string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("twsbus: server error %d: %s", e.Code, e.Text)
}

// isConnectionLevel reports whether err should reset every outstanding
// subscription rather than surface to just one.
func isConnectionLevel(err error) bool {
	return errors.Is(err, ErrConnectionReset) || errors.Is(err, ErrShutdown) || errors.Is(err, ErrConnectionFailed)
}
