// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders

import (
	"strings"
	"time"

	"code.hybscloud.com/twsbus/internal/wire"
)

// oneShotDecoder is embedded by every decoder in this file except
// NewsBulletinsDecoder: none of those request types can be cancelled
// once sent.
type oneShotDecoder struct{}

func (oneShotDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	return nil, wire.ErrNotImplemented
}

// CurrentTimeDecoder backs RequestCurrentTime.
type CurrentTimeDecoder struct{ oneShotDecoder }

func (CurrentTimeDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InCurrentTime}
}

func (CurrentTimeDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (time.Time, error) {
	f.Skip() // message type
	f.Skip() // version
	return f.NextTime()
}

// FamilyCodesDecoder backs RequestFamilyCodes.
type FamilyCodesDecoder struct{ oneShotDecoder }

// FamilyCode mirrors one entry of the FamilyCodes reply.
type FamilyCode struct {
	AccountID  string
	FamilyCode string
}

func (FamilyCodesDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InFamilyCodes}
}

func (FamilyCodesDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) ([]FamilyCode, error) {
	f.Skip() // message type
	n, err := f.NextInt()
	if err != nil {
		return nil, err
	}
	codes := make([]FamilyCode, 0, n)
	for i := int32(0); i < n; i++ {
		var fc FamilyCode
		if fc.AccountID, err = f.NextString(); err != nil {
			return nil, err
		}
		if fc.FamilyCode, err = f.NextString(); err != nil {
			return nil, err
		}
		codes = append(codes, fc)
	}
	return codes, nil
}

// ScannerParametersDecoder backs RequestScannerParameters.
type ScannerParametersDecoder struct{ oneShotDecoder }

func (ScannerParametersDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InScannerParameters}
}

func (ScannerParametersDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (string, error) {
	f.Skip() // message type
	return f.NextString()
}

// NewsBulletin mirrors one NewsBulletins frame.
type NewsBulletin struct {
	MessageID int32
	Type      int32
	Message   string
	Origin    string
}

// NewsBulletinsDecoder backs RequestNewsBulletins. Unlike the other
// decoders in this file, this one is cancellable: CancelNewsBulletins
// tears down the live subscription.
type NewsBulletinsDecoder struct{}

func (NewsBulletinsDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InNewsBulletins}
}

func (NewsBulletinsDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (NewsBulletin, error) {
	var b NewsBulletin
	f.Skip() // message type
	f.Skip() // version
	var err error
	if b.MessageID, err = f.NextInt(); err != nil {
		return b, err
	}
	if b.Type, err = f.NextInt(); err != nil {
		return b, err
	}
	if b.Message, err = f.NextString(); err != nil {
		return b, err
	}
	if b.Origin, err = f.NextString(); err != nil {
		return b, err
	}
	return b, nil
}

func (NewsBulletinsDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	req := wire.NewRequest(wire.OutCancelNewsBulletins)
	req.PushInt(1) // version
	return req, nil
}

// MarketRuleDecoder backs RequestMarketRule.
type MarketRuleDecoder struct{ oneShotDecoder }

// PriceIncrement mirrors one entry of a MarketRule reply.
type PriceIncrement struct {
	LowEdge   float64
	Increment float64
}

func (MarketRuleDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InMarketRule}
}

func (MarketRuleDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) ([]PriceIncrement, error) {
	f.Skip() // message type
	n, err := f.NextInt()
	if err != nil {
		return nil, err
	}
	increments := make([]PriceIncrement, 0, n)
	for i := int32(0); i < n; i++ {
		var pi PriceIncrement
		if pi.LowEdge, err = f.NextDouble(); err != nil {
			return nil, err
		}
		if pi.Increment, err = f.NextDouble(); err != nil {
			return nil, err
		}
		increments = append(increments, pi)
	}
	return increments, nil
}

// ManagedAccounts splits the comma-joined account list the handshake
// (and, in principle, a later ManagedAccounts frame) carries.
func ManagedAccounts(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	accounts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			accounts = append(accounts, p)
		}
	}
	return accounts
}

// NewRequestCurrentTimeRequest, NewRequestFamilyCodesRequest, and
// friends below are the trivial fire-once encoders for this file's
// request types.

func NewRequestCurrentTimeRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestCurrentTime)
}

func NewRequestFamilyCodesRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestFamilyCodes)
}

func NewRequestScannerParametersRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestScannerParameters)
}

func NewRequestNewsBulletinsRequest(allMessages bool) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestNewsBulletins)
	req.PushInt(1) // version
	req.PushBool(allMessages)
	return req
}

func NewRequestMarketRuleRequest(marketRuleID int32) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestMarketRule)
	req.PushInt(marketRuleID)
	return req
}

func NewRequestPositionsRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestPositions)
}

func NewRequestManagedAccountsRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestManagedAccounts)
}
