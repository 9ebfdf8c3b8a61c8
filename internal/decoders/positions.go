// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders

import "code.hybscloud.com/twsbus/internal/wire"

// PositionUpdate is one item of the RequestPositions stream: either a
// position record or the terminal marker that closes out the current
// snapshot (End is true, every other field is zero).
type PositionUpdate struct {
	Account  string
	Contract Contract
	Position float64
	AvgCost  float64
	End      bool
}

// PositionsDecoder backs Subscription[PositionUpdate].
type PositionsDecoder struct{}

func (PositionsDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InPosition, wire.InPositionEnd}
}

func (PositionsDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (PositionUpdate, error) {
	var p PositionUpdate
	switch f.MessageType() {
	case wire.InPositionEnd:
		p.End = true
		return p, nil
	case wire.InPosition:
		f.Skip() // message type
		var err error
		if p.Account, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.ConID, err = f.NextInt(); err != nil {
			return p, err
		}
		if p.Contract.Symbol, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.SecType, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.Expiry, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.Strike, err = f.NextDouble(); err != nil {
			return p, err
		}
		if p.Contract.Right, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.Multiplier, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.Exchange, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.Currency, err = f.NextString(); err != nil {
			return p, err
		}
		if p.Contract.LocalSymbol, err = f.NextString(); err != nil {
			return p, err
		}
		if ctx.ServerVersion >= tradingClassMinVersion {
			if p.Contract.TradingClass, err = f.NextString(); err != nil {
				return p, err
			}
		}
		if p.Position, err = f.NextDouble(); err != nil {
			return p, err
		}
		if p.AvgCost, err = f.NextDouble(); err != nil {
			return p, err
		}
		return p, nil
	default:
		return p, &wire.UnexpectedResponseError{MessageType: f.MessageType()}
	}
}

func (PositionsDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	return wire.NewRequest(wire.OutCancelPositions), nil
}

// tradingClassMinVersion is the protocol version RequestPositions
// started including a contract's trading class at. Mirrors
// FeatureTradingClass's minimum in the parent package's version table.
const tradingClassMinVersion = 68
