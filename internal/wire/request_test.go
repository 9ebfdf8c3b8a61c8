// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"testing"

	"code.hybscloud.com/twsbus/internal/wire"
)

func TestRequestMessageFieldOrder(t *testing.T) {
	req := wire.NewRequest(wire.OutRequestPositions)
	req.PushInt(1).PushString("DU123").PushBool(true).PushOptionalInt(0, false)

	want := []string{"61", "1", "DU123", "1", ""}
	got := req.Fields()
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRequestMessageEncodeNulTerminatesEveryField(t *testing.T) {
	req := wire.NewRequest(wire.OutRequestCurrentTime)
	encoded := req.Encode()
	want := "49\x00"
	if string(encoded) != want {
		t.Fatalf("Encode() = %q, want %q", encoded, want)
	}
}

func TestRequestMessageOptionalFieldsRoundTripThroughSplit(t *testing.T) {
	req := wire.NewRequest(wire.OutRequestMarketRule)
	req.PushOptionalInt(42, true)
	req.PushOptionalInt(0, false)
	req.PushOptionalDouble(3.25, true)
	req.PushOptionalDouble(0, false)

	fields := wire.Split(req.Encode())
	want := []string{"91", "42", "", "3.25", ""}
	if len(fields) != len(want) {
		t.Fatalf("Split(Encode()) = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Split(Encode())[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}
