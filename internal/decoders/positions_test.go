// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders_test

import (
	"testing"

	"code.hybscloud.com/twsbus/internal/decoders"
	"code.hybscloud.com/twsbus/internal/wire"
)

func TestPositionsDecoderDecodesAPosition(t *testing.T) {
	fields := []string{
		"61",     // tag
		"DU123",  // account
		"265598", // conid
		"AAPL",   // symbol
		"STK",    // sectype
		"",       // expiry
		"0",      // strike
		"",       // right
		"",       // multiplier
		"SMART",  // exchange
		"USD",    // currency
		"AAPL",   // local symbol
		"NMS",    // trading class (server version >= 68)
		"100",    // position
		"150.25", // avg cost
	}
	f := wire.NewFrame(fields)
	ctx := wire.DecoderContext{ServerVersion: 178}

	p, err := decoders.PositionsDecoder{}.Decode(ctx, f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.Account != "DU123" || p.Contract.Symbol != "AAPL" || p.Contract.TradingClass != "NMS" {
		t.Fatalf("Decode() = %+v, want account DU123, symbol AAPL, trading class NMS", p)
	}
	if p.Position != 100 || p.AvgCost != 150.25 {
		t.Fatalf("Decode() position/avgCost = %v/%v, want 100/150.25", p.Position, p.AvgCost)
	}
	if p.End {
		t.Fatalf("Decode() of a Position frame reported End=true")
	}
}

func TestPositionsDecoderOmitsTradingClassBelowMinVersion(t *testing.T) {
	fields := []string{
		"61", "DU123", "265598", "AAPL", "STK", "", "0", "", "",
		"SMART", "USD", "AAPL", "100", "150.25",
	}
	f := wire.NewFrame(fields)
	ctx := wire.DecoderContext{ServerVersion: 60}

	p, err := decoders.PositionsDecoder{}.Decode(ctx, f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.Contract.TradingClass != "" {
		t.Fatalf("Decode() below minimum version set TradingClass = %q, want empty", p.Contract.TradingClass)
	}
	if p.Position != 100 {
		t.Fatalf("Decode() position = %v, want 100 (field offset shifted correctly)", p.Position)
	}
}

func TestPositionsDecoderEndMarker(t *testing.T) {
	f := wire.NewFrame([]string{"62"})
	p, err := decoders.PositionsDecoder{}.Decode(wire.DecoderContext{}, f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !p.End {
		t.Fatalf("Decode(PositionEnd) = %+v, want End=true", p)
	}
}

func TestPositionsDecoderUnexpectedMessageType(t *testing.T) {
	f := wire.NewFrame([]string{"9"})
	_, err := decoders.PositionsDecoder{}.Decode(wire.DecoderContext{}, f)
	var uerr *wire.UnexpectedResponseError
	if err == nil {
		t.Fatalf("Decode() of an unrelated message type: want an error, got nil")
	}
	if !asUnexpectedResponseError(err, &uerr) {
		t.Fatalf("Decode() error type = %T, want *wire.UnexpectedResponseError", err)
	}
}

func TestPositionsDecoderCancelMessage(t *testing.T) {
	req, err := decoders.PositionsDecoder{}.CancelMessage(wire.DecoderContext{}, 0, false)
	if err != nil {
		t.Fatalf("CancelMessage() error = %v", err)
	}
	if got := req.Fields(); len(got) != 1 || got[0] != "64" {
		t.Fatalf("CancelMessage() fields = %v, want [64] (OutCancelPositions)", got)
	}
}

func asUnexpectedResponseError(err error, target **wire.UnexpectedResponseError) bool {
	e, ok := err.(*wire.UnexpectedResponseError)
	if !ok {
		return false
	}
	*target = e
	return true
}
