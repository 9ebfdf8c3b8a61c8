// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"errors"
	"sync"

	"code.hybscloud.com/twsbus/internal/wire"
)

// DecoderContext carries the per-call state a decoder needs beyond the
// raw frame: the negotiated protocol version (gates which optional
// fields are present), the time zone timestamps should be interpreted
// in, whether this was a smart-depth market-depth request, and the
// outgoing type that started the stream (one decoder type can back
// more than one request shape and must pick its cancel frame
// accordingly). Defined in internal/wire so internal/decoders can take
// it as a parameter without importing this package back.
type DecoderContext = wire.DecoderContext

// StreamDecoder is the contract every domain message type implements
// to participate in a Subscription[T]. ResponseMessageIDs declares
// which inbound message types this decoder accepts; Decode consumes
// one frame's fields after the caller has already dispatched on
// MessageType(); CancelMessage produces the frame that unsubscribes a
// live stream, or ErrNotImplemented for one-shot requests that cannot
// be cancelled.
type StreamDecoder[T any] interface {
	ResponseMessageIDs() []wire.IncomingMessageType
	Decode(ctx DecoderContext, frame *wire.Frame) (T, error)
	CancelMessage(ctx DecoderContext, requestID int32, hasRequestID bool) (*wire.RequestMessage, error)
}

// Subscription is the caller-facing handle for one registered receiver
// (keyed by request id, order id, or shared-by-type). It is generic
// over the decoded value type; the decoder is supplied at
// construction and is the only thing that knows how to turn a raw
// Response into a T.
type Subscription[T any] struct {
	mu       sync.Mutex
	recv     <-chan Response
	decoder  StreamDecoder[T]
	ctx      DecoderContext
	bus      *Bus
	requestID   int32
	hasRequestID bool
	signal   signal
	hasSignal bool

	terminal    bool
	terminalErr error
	cancelled   bool
}

func newSubscription[T any](bus *Bus, recv <-chan Response, decoder StreamDecoder[T], ctx DecoderContext, sig signal, hasSignal bool, requestID int32, hasRequestID bool) *Subscription[T] {
	return &Subscription[T]{
		recv:         recv,
		decoder:      decoder,
		ctx:          ctx,
		bus:          bus,
		requestID:    requestID,
		hasRequestID: hasRequestID,
		signal:       sig,
		hasSignal:    hasSignal,
	}
}

// Next blocks for the next decoded value. It returns (zero, false,
// nil) once the stream has ended normally (an EndOfStream-shaped
// decode). For any other terminal condition (a delivered error, a
// server Error frame, or an explicit Cancel) it returns (zero, false,
// err) exactly once, on the call that observes it; every subsequent
// call returns (zero, false, nil).
func (s *Subscription[T]) Next() (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		// The terminal error is delivered exactly once: the call that
		// first observes it gets it, every subsequent call gets
		// (zero, false, nil), matching spec.md §5/§8's "yields the
		// error once, then None" contract.
		err := s.terminalErr
		s.terminalErr = nil
		return zero, false, err
	}

	r, ok := <-s.recv
	if !ok {
		s.terminal = true
		return zero, false, nil
	}
	if r.Err != nil {
		s.terminal = true
		if errors.Is(r.Err, ErrEndOfStream) {
			return zero, false, nil
		}
		// Delivered directly on this call, not stashed in
		// terminalErr: it must not be replayed on the next call.
		return zero, false, r.Err
	}

	// An Error frame reaching a subscription at all means the router
	// already decided it was addressed and non-warning (routeError
	// drops unaddressed/warning-band frames before delivery); surface
	// it as the subscription's terminal error rather than handing it
	// to a decoder that was never built to recognize InError. As
	// above, delivered directly, not stashed for replay.
	if r.Frame.MessageType() == wire.InError {
		s.terminal = true
		return zero, false, decodeMessageError(r.Frame)
	}

	v, err := s.decoder.Decode(s.ctx, r.Frame)
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			s.terminal = true
			return zero, false, nil
		}
		return zero, false, err
	}
	return v, true, nil
}

// decodeMessageError reads an Error frame's code and text without
// disturbing its cursor. Layout: tag(0) version(1) request_id(2)
// error_code(3) error_message(4)[ advanced_order_reject_json(5)].
func decodeMessageError(f *wire.Frame) *MessageError {
	code, _ := f.PeekInt(3)
	text, _ := f.PeekString(4)
	return &MessageError{Code: code, Text: text}
}

// Cancel sends the decoder's cancel frame (if it has one) and marks
// the subscription terminal. It is idempotent: a second call is a
// no-op. A decoder with no cancel frame (ErrNotImplemented) still
// marks the subscription cancelled locally.
func (s *Subscription[T]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.terminal {
		return nil
	}
	s.cancelled = true
	s.terminal = true
	s.terminalErr = ErrCancelled

	req, err := s.decoder.CancelMessage(s.ctx, s.requestID, s.hasRequestID)
	if err != nil {
		if errors.Is(err, ErrNotImplemented) {
			return nil
		}
		return err
	}
	return s.bus.sendMessage(req)
}

// Close tears down the subscription: if it hasn't already reached a
// terminal state, it best-effort cancels (logging, not returning, any
// write error — mirroring a Rust Drop impl, which cannot propagate
// errors), then posts the drop-signal so the cleanup goroutine
// reclaims the registry slot. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	alreadyTerminal := s.terminal
	postSignal := s.hasSignal
	s.hasSignal = false
	s.mu.Unlock()

	if !alreadyTerminal {
		if err := s.Cancel(); err != nil {
			s.bus.log.WithError(err).Debug("twsbus: best-effort cancel on close failed")
		}
	}
	if postSignal {
		s.bus.postSignal(s.signal)
	}
}
