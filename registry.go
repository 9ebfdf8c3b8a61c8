// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"sync"

	"code.hybscloud.com/twsbus/internal/wire"
)

// Response is what the dispatcher delivers downstream: either a parsed
// frame or a terminal/transport error. Exactly one of Frame, Err is set.
type Response struct {
	Frame *wire.Frame
	Err   error
}

// keyedSenders is a mutex-guarded map from a routing key to the
// channel feeding its Subscription. It mirrors the shape of the
// original client's SenderHash<K,V>: insert/remove/contains/send, plus
// copySender (needed for the execution-id late-binding side effect)
// and notifyAll (used to fan a terminal error out to every live key on
// shutdown or reconnect).
type keyedSenders[K comparable] struct {
	mu      sync.RWMutex
	senders map[K]*responseChannel
}

func newKeyedSenders[K comparable]() *keyedSenders[K] {
	return &keyedSenders[K]{senders: make(map[K]*responseChannel)}
}

func (k *keyedSenders[K]) insert(id K, ch *responseChannel) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.senders[id] = ch
}

// remove detaches id from the table. It does not close the channel:
// the same channel may still be reachable under another key (an
// execution id aliased onto an order id's channel via copySender).
func (k *keyedSenders[K]) remove(id K) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.senders, id)
}

func (k *keyedSenders[K]) contains(id K) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.senders[id]
	return ok
}

// copySender returns the channel registered for id without removing
// it, so the caller can register a second key (an execution id) that
// points at the same downstream channel.
func (k *keyedSenders[K]) copySender(id K) (*responseChannel, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ch, ok := k.senders[id]
	return ch, ok
}

// send delivers r to id's channel. A missing key is logged and
// dropped, not an error — a late frame for a torn-down subscription is
// expected, not exceptional.
func (k *keyedSenders[K]) send(id K, r Response, log logger) {
	k.mu.RLock()
	ch, ok := k.senders[id]
	k.mu.RUnlock()
	if !ok {
		log.Debugf("twsbus: dropping frame for unknown key %v", id)
		return
	}
	ch.send(r)
}

func (k *keyedSenders[K]) len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.senders)
}

func (k *keyedSenders[K]) clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.senders = make(map[K]*responseChannel)
}

// notifyAll best-effort delivers r to every currently registered
// channel, used to broadcast ErrConnectionReset or ErrShutdown.
func (k *keyedSenders[K]) notifyAll(r Response) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	seen := make(map[*responseChannel]struct{}, len(k.senders))
	for _, ch := range k.senders {
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		ch.send(r)
	}
}

// sharedChannels implements SharedByType routing: one sender per
// outgoing type, fanned out to every inbound type declared as its
// response, built once from channelMappings and never mutated — only
// its send side is exercised at runtime, per spec.md §3's invariant.
type sharedChannels struct {
	senders   map[wire.IncomingMessageType][]*responseChannel
	receivers map[wire.OutgoingMessageType]*responseChannel
}

func newSharedChannels(mappings []channelMapping) *sharedChannels {
	sc := &sharedChannels{
		senders:   make(map[wire.IncomingMessageType][]*responseChannel),
		receivers: make(map[wire.OutgoingMessageType]*responseChannel),
	}
	for _, m := range mappings {
		ch := newResponseChannel()
		sc.receivers[m.request] = ch
		for _, in := range m.responses {
			sc.senders[in] = append(sc.senders[in], ch)
		}
	}
	return sc
}

func (sc *sharedChannels) receiver(t wire.OutgoingMessageType) (*responseChannel, bool) {
	ch, ok := sc.receivers[t]
	return ch, ok
}

func (sc *sharedChannels) containsSender(t wire.IncomingMessageType) bool {
	_, ok := sc.senders[t]
	return ok
}

func (sc *sharedChannels) sendMessage(t wire.IncomingMessageType, r Response) {
	for _, ch := range sc.senders[t] {
		ch.send(cloneResponse(r))
	}
}

// cloneResponse deep-copies r's frame (if any) so two destinations
// fed the same inbound message don't share a cursor.
func cloneResponse(r Response) Response {
	if r.Frame == nil {
		return r
	}
	return Response{Frame: r.Frame.Clone(), Err: r.Err}
}

func (sc *sharedChannels) notifyAll(r Response) {
	for _, ch := range sc.receivers {
		ch.send(r)
	}
}

// logger is the minimal surface the registry needs from a *logrus.Logger,
// kept narrow so registry.go doesn't need to import logrus directly.
type logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}
