// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders

import "code.hybscloud.com/twsbus/internal/wire"

// ContractDetailsUpdate is one item of the RequestContractDetails
// stream.
type ContractDetailsUpdate struct {
	Contract    Contract
	MarketName  string
	MinTick     float64
	OrderTypes  string
	ValidExchanges string
	LongName    string
	End         bool
}

// ContractDetailsDecoder backs Subscription[ContractDetailsUpdate].
type ContractDetailsDecoder struct{}

func (ContractDetailsDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InContractData, wire.InContractDataEnd}
}

func (ContractDetailsDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (ContractDetailsUpdate, error) {
	var d ContractDetailsUpdate
	if f.MessageType() == wire.InContractDataEnd {
		d.End = true
		return d, nil
	}
	f.Skip() // message type
	f.Skip() // version
	f.Skip() // request id
	var err error
	if d.Contract.Symbol, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.SecType, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.Expiry, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.Strike, err = f.NextDouble(); err != nil {
		return d, err
	}
	if d.Contract.Right, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.Exchange, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.Currency, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.LocalSymbol, err = f.NextString(); err != nil {
		return d, err
	}
	if d.MarketName, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.TradingClass, err = f.NextString(); err != nil {
		return d, err
	}
	if d.Contract.ConID, err = f.NextInt(); err != nil {
		return d, err
	}
	if d.MinTick, err = f.NextDouble(); err != nil {
		return d, err
	}
	if d.Contract.Multiplier, err = f.NextString(); err != nil {
		return d, err
	}
	if d.OrderTypes, err = f.NextString(); err != nil {
		return d, err
	}
	if d.ValidExchanges, err = f.NextString(); err != nil {
		return d, err
	}
	if d.LongName, err = f.NextString(); err != nil {
		return d, err
	}
	return d, nil
}

func (ContractDetailsDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	return nil, wire.ErrNotImplemented
}

// NewRequestContractDetailsRequest encodes a RequestContractData
// frame for the given request id and a (possibly partially specified)
// contract.
func NewRequestContractDetailsRequest(requestID int32, c Contract) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestContractData)
	req.PushInt(8) // version
	req.PushInt(requestID)
	req.PushInt(c.ConID)
	req.PushString(c.Symbol)
	req.PushString(c.SecType)
	req.PushString(c.Expiry)
	req.PushDouble(c.Strike)
	req.PushString(c.Right)
	req.PushString(c.Multiplier)
	req.PushString(c.Exchange)
	req.PushString(c.Currency)
	req.PushString(c.LocalSymbol)
	req.PushString(c.TradingClass)
	return req
}
