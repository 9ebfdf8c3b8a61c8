// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "time"

// DecoderContext carries the per-call state a decoder needs beyond the
// raw frame. It lives here (rather than in the parent package) so
// internal/decoders can take it as a parameter without importing the
// parent package back; the parent package re-exports it as
// twsbus.DecoderContext.
type DecoderContext struct {
	ServerVersion int32
	Location      *time.Location
	SmartDepth    bool
	Outgoing      OutgoingMessageType
}
