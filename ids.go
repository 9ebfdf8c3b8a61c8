// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import "sync/atomic"

// requestIDFloor is where the request-id counter starts. Low values
// are reserved by the protocol's own bookkeeping (order ids in
// particular), so client-assigned request ids start well clear of them.
const requestIDFloor = 9000

// idGenerator hands out monotonically increasing, never-reused ids.
// One instance tracks request ids (seeded at requestIDFloor); a second
// tracks order ids (seeded from the server's NextValidId reply).
type idGenerator struct {
	next atomic.Int32
}

func newIDGenerator(seed int32) *idGenerator {
	g := &idGenerator{}
	g.next.Store(seed)
	return g
}

// nextID returns the next id and advances the counter.
func (g *idGenerator) nextID() int32 {
	return g.next.Add(1) - 1
}

// reseed resets the counter, used when the server's NextValidId reply
// arrives during the handshake.
func (g *idGenerator) reseed(v int32) {
	g.next.Store(v)
}

// peek reports the next id that will be handed out, without consuming it.
func (g *idGenerator) peek() int32 {
	return g.next.Load()
}
