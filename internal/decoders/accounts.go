// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders

import "code.hybscloud.com/twsbus/internal/wire"

// AccountUpdate is one item of the RequestAccountData stream, covering
// all four inbound message types that stream answers with; exactly
// one of the non-End, non-Time fields is populated per value,
// indicated by Kind.
type AccountUpdate struct {
	Kind AccountUpdateKind

	// Kind == AccountValueUpdate
	Key         string
	Value       string
	Currency    string
	AccountName string

	// Kind == PortfolioValueUpdate
	Contract     Contract
	Position     float64
	MarketPrice  float64
	MarketValue  float64
	AverageCost  float64
	UnrealizedPL float64
	RealizedPL   float64

	// Kind == AccountUpdateTimeUpdate
	Timestamp string

	// Kind == AccountDownloadEndUpdate
	End bool
}

type AccountUpdateKind uint8

const (
	AccountValueUpdate AccountUpdateKind = iota
	PortfolioValueUpdate
	AccountUpdateTimeUpdate
	AccountDownloadEndUpdate
)

// AccountDataDecoder backs Subscription[AccountUpdate].
type AccountDataDecoder struct{}

func (AccountDataDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{
		wire.InAccountValue, wire.InPortfolioValue, wire.InAccountUpdateTime, wire.InAccountDownloadEnd,
	}
}

func (AccountDataDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (AccountUpdate, error) {
	var u AccountUpdate
	switch f.MessageType() {
	case wire.InAccountDownloadEnd:
		u.Kind = AccountDownloadEndUpdate
		u.End = true
		return u, nil
	case wire.InAccountUpdateTime:
		u.Kind = AccountUpdateTimeUpdate
		f.Skip() // message type
		f.Skip() // version
		ts, err := f.NextString()
		if err != nil {
			return u, err
		}
		u.Timestamp = ts
		return u, nil
	case wire.InAccountValue:
		u.Kind = AccountValueUpdate
		f.Skip()
		f.Skip()
		var err error
		if u.Key, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Value, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Currency, err = f.NextString(); err != nil {
			return u, err
		}
		if u.AccountName, err = f.NextString(); err != nil {
			return u, err
		}
		return u, nil
	case wire.InPortfolioValue:
		u.Kind = PortfolioValueUpdate
		f.Skip()
		f.Skip()
		var err error
		if u.Contract.ConID, err = f.NextInt(); err != nil {
			return u, err
		}
		if u.Contract.Symbol, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.SecType, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.Expiry, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.Strike, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.Contract.Right, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.Multiplier, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.Currency, err = f.NextString(); err != nil {
			return u, err
		}
		if u.Contract.LocalSymbol, err = f.NextString(); err != nil {
			return u, err
		}
		if ctx.ServerVersion >= tradingClassMinVersion {
			if u.Contract.TradingClass, err = f.NextString(); err != nil {
				return u, err
			}
		}
		if u.Position, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.MarketPrice, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.MarketValue, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.AverageCost, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.UnrealizedPL, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.RealizedPL, err = f.NextDouble(); err != nil {
			return u, err
		}
		if u.AccountName, err = f.NextString(); err != nil {
			return u, err
		}
		return u, nil
	default:
		return u, &wire.UnexpectedResponseError{MessageType: f.MessageType()}
	}
}

func (AccountDataDecoder) CancelMessage(ctx wire.DecoderContext, requestID int32, hasRequestID bool) (*wire.RequestMessage, error) {
	return NewRequestAccountDataRequest(false, ""), nil
}

// NewRequestAccountDataRequest encodes a RequestAccountData frame.
// subscribe toggles whether updates keep streaming after the initial
// snapshot; the same frame shape (subscribe=false) is also this
// stream's cancel message.
func NewRequestAccountDataRequest(subscribe bool, acctCode string) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestAccountData)
	req.PushInt(2) // version
	req.PushBool(subscribe)
	req.PushString(acctCode)
	return req
}
