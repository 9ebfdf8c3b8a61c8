// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/twsbus/internal/wire"
)

// stubDecoder decodes a frame's sole string field verbatim and reports
// EndOfStream for a frame tagged 0.
type stubDecoder struct{}

func (stubDecoder) ResponseMessageIDs() []wire.IncomingMessageType { return nil }

func (stubDecoder) Decode(ctx DecoderContext, f *wire.Frame) (string, error) {
	if f.MessageType() == 0 {
		return "", ErrEndOfStream
	}
	f.Skip()
	return f.NextString()
}

func (stubDecoder) CancelMessage(ctx DecoderContext, requestID int32, hasRequestID bool) (*wire.RequestMessage, error) {
	if !hasRequestID {
		return nil, ErrNotImplemented
	}
	return wire.NewRequest(wire.OutCancelPositions), nil
}

func newTestBus() *Bus {
	return &Bus{
		log:     logrus.New(),
		signals: make(chan signal, 8),
	}
}

func TestSubscriptionNextDecodesValues(t *testing.T) {
	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](newTestBus(), ch.recv(), stubDecoder{}, DecoderContext{}, signal{}, false, 0, false)

	ch.send(Response{Frame: wire.NewFrame([]string{"61", "hello"})})
	v, ok, err := sub.Next()
	if err != nil || !ok || v != "hello" {
		t.Fatalf("Next() = (%q, %v, %v), want (hello, true, nil)", v, ok, err)
	}
}

func TestSubscriptionNextTranslatesEndOfStreamToFalseNil(t *testing.T) {
	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](newTestBus(), ch.recv(), stubDecoder{}, DecoderContext{}, signal{}, false, 0, false)

	ch.send(Response{Frame: wire.NewFrame([]string{"0"})})
	v, ok, err := sub.Next()
	if err != nil || ok || v != "" {
		t.Fatalf("Next() at end of stream = (%q, %v, %v), want (\"\", false, nil)", v, ok, err)
	}
}

func TestSubscriptionNextIsTerminalAfterError(t *testing.T) {
	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](newTestBus(), ch.recv(), stubDecoder{}, DecoderContext{}, signal{}, false, 0, false)

	ch.send(Response{Err: ErrConnectionFailed})
	_, _, err := sub.Next()
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Next() = %v, want ErrConnectionFailed", err)
	}

	// A second call must not replay the error: it observes that the
	// subscription is terminal and returns (zero, false, nil) without
	// blocking on the (now-unused) channel.
	v2, ok2, err2 := sub.Next()
	if err2 != nil || ok2 || v2 != "" {
		t.Fatalf("Next() after terminal = (%q, %v, %v), want (\"\", false, nil)", v2, ok2, err2)
	}
}

func TestSubscriptionCancelIsIdempotentAndSendsCancelFrame(t *testing.T) {
	sock := &scriptedSocket{}
	bus := newTestBus()
	bus.sock = sock

	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](bus, ch.recv(), stubDecoder{}, DecoderContext{}, signal{}, false, 7, true)

	if err := sub.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if len(sock.written) != 1 {
		t.Fatalf("Cancel() wrote %d frames, want 1", len(sock.written))
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second Cancel() error = %v, want nil (idempotent)", err)
	}
	if len(sock.written) != 1 {
		t.Fatalf("second Cancel() wrote another frame, want no-op")
	}
}

func TestSubscriptionCancelWithoutRequestIDIsLocalOnly(t *testing.T) {
	sock := &scriptedSocket{}
	bus := newTestBus()
	bus.sock = sock

	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](bus, ch.recv(), stubDecoder{}, DecoderContext{}, signal{}, false, 0, false)

	if err := sub.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v, want nil for ErrNotImplemented decoders", err)
	}
	if len(sock.written) != 0 {
		t.Fatalf("Cancel() wrote a frame for a non-cancellable decoder")
	}
}

func TestSubscriptionClosePostsSignalExactlyOnce(t *testing.T) {
	sock := &scriptedSocket{}
	bus := newTestBus()
	bus.sock = sock

	ch := newResponseChannel()
	defer ch.close()
	sub := newSubscription[string](bus, ch.recv(), stubDecoder{}, DecoderContext{}, signal{kind: signalRequest, id: 7}, true, 7, true)

	sub.Close()
	sub.Close() // safe to call twice

	if len(bus.signals) != 1 {
		t.Fatalf("Close() posted %d signals, want exactly 1", len(bus.signals))
	}
	sig := <-bus.signals
	if sig.kind != signalRequest || sig.id != 7 {
		t.Fatalf("posted signal = %+v, want {kind: signalRequest, id: 7}", sig)
	}
}

// scriptedSocket is a minimal wire.Socket fake that records writes and
// never produces any inbound frame, used where a test only exercises
// the write side (subscription cancel/close).
type scriptedSocket struct {
	written [][]byte
}

func (s *scriptedSocket) ReadFrame() ([]byte, error)  { select {} }
func (s *scriptedSocket) WriteAll(buf []byte) error {
	s.written = append(s.written, append([]byte(nil), buf...))
	return nil
}
func (s *scriptedSocket) WriteRaw(buf []byte) error { return s.WriteAll(buf) }
func (s *scriptedSocket) Reconnect() error          { return nil }
func (s *scriptedSocket) Sleep(d time.Duration)     {}
