// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package decoders implements the StreamDecoder bindings for the
// subset of TWS/Gateway message types this module ships a typed
// decoder for. Each file groups one domain area (positions, accounts,
// orders, contracts, misc housekeeping replies); every decoder follows
// the same shape: a RESPONSE_MESSAGE_IDS list, a Decode method that
// consumes fields off an already-tagged frame, and a CancelMessage
// method that either builds the matching cancel frame or reports
// ErrNotImplemented for one-shot requests.
package decoders

// Contract is the subset of contract fields this module's decoders
// populate. The full contract schema has several dozen fields across
// option/future/bond variants; only what RequestPositions,
// RequestOpenOrders, and RequestContractDetails actually return here
// is represented, per this module's decoder scope.
type Contract struct {
	ConID         int32
	Symbol        string
	SecType       string
	Expiry        string
	Strike        float64
	Right         string
	Multiplier    string
	Exchange      string
	Currency      string
	LocalSymbol   string
	TradingClass  string
}
