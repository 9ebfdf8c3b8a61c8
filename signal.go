// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

// signalKind distinguishes the three shapes of drop-signal a
// Subscription posts to the cleanup goroutine when it is torn down.
type signalKind uint8

const (
	signalRequest signalKind = iota
	signalOrder
	signalOrderUpdateStream
)

// signal is posted by a Subscription's teardown to the cleanup
// goroutine, which reclaims the corresponding registry slot.
type signal struct {
	kind     signalKind
	id       int32 // valid for signalRequest / signalOrder
}
