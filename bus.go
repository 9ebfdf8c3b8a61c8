// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/twsbus/internal/wire"
)

// Bus owns the socket, the routing registries, and the dispatcher and
// cleanup goroutines that drive them. It is the blocking-mode
// equivalent of the original client's MessageBus: one goroutine reads
// and routes, one drains drop-signals, any number of callers write.
type Bus struct {
	sock wire.Socket
	opts *Options
	log  *logrus.Logger

	rt            *router
	requestIDs    *idGenerator
	orderIDs      *idGenerator
	serverVersion atomic.Int32

	signals chan signal

	shuttingDown atomic.Bool
	group        *errgroup.Group
	cancel       context.CancelFunc

	framesReceived metric.Int64Counter
	framesDropped  metric.Int64Counter
	reconnects     metric.Int64Counter
}

// NewBus wraps an already-handshaken socket. hr carries the handshake
// outcome the caller obtained via handshake() or reconnectWithBackoff().
func NewBus(sock wire.Socket, hr *handshakeResult, opts *Options) *Bus {
	b := &Bus{
		sock:       sock,
		opts:       opts,
		log:        opts.Logger,
		rt:         newRouter(opts.Logger),
		requestIDs: newIDGenerator(requestIDFloor),
		orderIDs:   newIDGenerator(hr.NextOrderID),
		signals:    make(chan signal, 64),
	}
	b.serverVersion.Store(hr.ServerVersion)

	b.framesReceived, _ = opts.Meter.Int64Counter("twsbus.frames.received")
	b.framesDropped, _ = opts.Meter.Int64Counter("twsbus.frames.dropped")
	b.reconnects, _ = opts.Meter.Int64Counter("twsbus.reconnects")
	return b
}

// ServerVersion returns the protocol version negotiated at handshake
// (or the most recent reconnect, since a server may answer
// differently across a restart).
func (b *Bus) ServerVersion() int32 { return b.serverVersion.Load() }

// NextRequestID allocates the next client-assigned request id.
func (b *Bus) NextRequestID() int32 { return b.requestIDs.nextID() }

// NextOrderID allocates the next client-assigned order id, seeded from
// the server's NextValidId reply at handshake.
func (b *Bus) NextOrderID() int32 { return b.orderIDs.nextID() }

// Start launches the dispatcher and cleanup goroutines under an
// errgroup derived from ctx; cancelling ctx (or calling Shutdown)
// unwinds both.
func (b *Bus) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	b.group = g
	g.Go(func() error { return b.dispatcherLoop(gctx) })
	g.Go(func() error { return b.cleanupLoop(gctx) })
}

// Wait blocks until both the dispatcher and cleanup goroutines have
// exited, returning the first error either reported.
func (b *Bus) Wait() error {
	if b.group == nil {
		return nil
	}
	return b.group.Wait()
}

// Shutdown requests an orderly stop: the dispatcher exits on its next
// read timeout, the cleanup loop exits on its next wakeup, and every
// outstanding subscription is terminated with ErrShutdown.
func (b *Bus) Shutdown() {
	if !b.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	b.resetAll(ErrShutdown)
	if b.cancel != nil {
		b.cancel()
	}
}

// resetAll broadcasts err to every outstanding subscription and clears
// every registry. It is the only caller of router.reset, so every
// connection-level error the bus ever raises funnels through one place
// and one classification (isConnectionLevel) instead of each call site
// deciding for itself whether a reset is warranted.
func (b *Bus) resetAll(err error) {
	if !isConnectionLevel(err) {
		b.log.WithError(err).Warn("twsbus: resetAll called with a non-connection-level error")
	}
	b.rt.reset(err)
}

func (b *Bus) isShuttingDown() bool { return b.shuttingDown.Load() }

// dispatcherLoop is the sole reader of the socket. It owns routing and
// reconnection; everything else only ever writes.
func (b *Bus) dispatcherLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil || b.isShuttingDown() {
			return nil
		}

		payload, err := b.sock.ReadFrame()
		switch {
		case err == nil:
			if wire.IsShutdownFrame(payload) {
				b.log.Info("twsbus: server closed the connection")
				b.Shutdown()
				return nil
			}
			b.handleFrame(payload)
		case wire.IsTimeoutError(err):
			continue
		case wire.IsConnectionError(err):
			if rerr := b.handleConnectionError(); rerr != nil {
				return rerr
			}
		default:
			b.log.WithError(err).Error("twsbus: unexpected read error")
			return err
		}
	}
}

func (b *Bus) handleFrame(payload []byte) {
	if b.framesReceived != nil {
		b.framesReceived.Add(context.Background(), 1)
	}
	f := wire.NewFrame(wire.Split(payload))
	b.rt.dispatch(f)
}

// handleConnectionError implements spec §4.3's reconnect policy: capped
// exponential backoff, then a full bus reset — ErrConnectionReset
// delivered to every subscription once the reconnect succeeds, or a
// terminal ErrConnectionFailed delivered to every subscription on
// exhaustion.
func (b *Bus) handleConnectionError() error {
	b.log.Warn("twsbus: connection lost, reconnecting")

	hr, err := reconnectWithBackoff(b.sock, b.opts, b.log)
	if err != nil {
		b.log.WithError(err).Error("twsbus: reconnect attempts exhausted, shutting down")
		b.resetAll(ErrConnectionFailed)
		b.shuttingDown.Store(true)
		return ErrConnectionFailed
	}
	if b.reconnects != nil {
		b.reconnects.Add(context.Background(), 1)
	}
	b.serverVersion.Store(hr.ServerVersion)
	b.orderIDs.reseed(hr.NextOrderID)
	b.resetAll(ErrConnectionReset)
	return nil
}

// cleanupLoop drains drop-signals posted by Subscription teardown and
// reclaims the corresponding registry slot.
func (b *Bus) cleanupLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-b.signals:
			switch sig.kind {
			case signalRequest:
				b.rt.requests.remove(sig.id)
			case signalOrder:
				b.rt.orders.remove(sig.id)
			case signalOrderUpdateStream:
				b.rt.orderUpdate.clear()
			}
		}
	}
}

// postSignal is best-effort: cleanup always drains faster than
// subscriptions are dropped in practice, but a full shutdown must
// never block a Subscription's teardown path.
func (b *Bus) postSignal(sig signal) {
	select {
	case b.signals <- sig:
	default:
		go func() { b.signals <- sig }()
	}
}

// writeFrame serializes req and writes it to the socket. Concurrent
// callers are serialized by the socket's own write mutex; the bus adds
// no further locking.
func (b *Bus) writeFrame(req *wire.RequestMessage) error {
	return b.sock.WriteAll(wire.Frame(req.Encode()))
}

// openRequest registers requestID against a fresh unbounded channel,
// writes req, and returns the channel. Used by the per-request
// builder.
func (b *Bus) openRequest(requestID int32, req *wire.RequestMessage) (*responseChannel, error) {
	ch := newResponseChannel()
	b.rt.requests.insert(requestID, ch)
	if err := b.writeFrame(req); err != nil {
		b.rt.requests.remove(requestID)
		return nil, err
	}
	return ch, nil
}

// openOrder registers orderID and writes req. Used by the per-order
// builder (PlaceOrder and friends).
func (b *Bus) openOrder(orderID int32, req *wire.RequestMessage) (*responseChannel, error) {
	ch := newResponseChannel()
	b.rt.orders.insert(orderID, ch)
	if err := b.writeFrame(req); err != nil {
		b.rt.orders.remove(orderID)
		return nil, err
	}
	return ch, nil
}

// openShared looks up the pre-built shared-by-type channel for
// outgoing and writes req. Used by the shared-by-type builder (e.g.
// RequestPositions, which has no per-call id).
func (b *Bus) openShared(outgoing wire.OutgoingMessageType, req *wire.RequestMessage) (*responseChannel, error) {
	ch, ok := b.rt.shared.receiver(outgoing)
	if !ok {
		return nil, ErrNotImplemented
	}
	if err := b.writeFrame(req); err != nil {
		return nil, err
	}
	return ch, nil
}

// sendMessage writes a fire-and-forget request with no response
// registration at all (cancels, and one-way notifications).
func (b *Bus) sendMessage(req *wire.RequestMessage) error {
	return b.writeFrame(req)
}

// openOrderUpdateStream installs the singleton order-update sink,
// failing with ErrAlreadySubscribed if one is already live. The
// check-and-set happens atomically under orderUpdate's own lock
// (router.go's orderUpdateSink.trySet), so of any number of callers
// racing concurrently exactly one observes success and every other
// one observes ErrAlreadySubscribed — singleflight would instead
// coalesce concurrent callers onto one shared result, handing more
// than one of them the same winning channel, which is wrong for a
// mutually-exclusive state transition rather than an idempotent one.
func (b *Bus) openOrderUpdateStream() (*responseChannel, error) {
	ch := newResponseChannel()
	if !b.rt.orderUpdate.trySet(ch) {
		ch.close()
		return nil, ErrAlreadySubscribed
	}
	return ch, nil
}
