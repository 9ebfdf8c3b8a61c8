// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"testing"

	"code.hybscloud.com/twsbus/internal/wire"
)

func TestDetermineRouting(t *testing.T) {
	cases := []struct {
		name   string
		frame  *wire.Frame
		want   routingKind
	}{
		{"error frame", wire.NewFrame([]string{"4", "2", "9001", "201", "boom"}), routeError},
		{"open order", wire.NewFrame([]string{"5", "1"}), routeByOrder},
		{"execution data", wire.NewFrame([]string{"11", "1"}), routeByOrder},
		{"commission report", wire.NewFrame([]string{"59", "1"}), routeByOrder},
		{"position", wire.NewFrame([]string{"61", "DU123"}), routeOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := determineRouting(tc.frame).kind; got != tc.want {
				t.Fatalf("determineRouting(%v).kind = %v, want %v", tc.frame.Fields, got, tc.want)
			}
		})
	}
}

func TestIsWarningCode(t *testing.T) {
	cases := []struct {
		code int32
		want bool
	}{
		{2099, false},
		{2100, true},
		{2135, true},
		{2169, true},
		{2170, false},
		{201, false},
	}
	for _, tc := range cases {
		if got := isWarningCode(tc.code); got != tc.want {
			t.Fatalf("isWarningCode(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestRouterDispatchRequestID(t *testing.T) {
	rt := newRouter(discardLogger{})
	ch := newResponseChannel()
	defer ch.close()
	rt.requests.insert(9001, ch)

	rt.dispatch(wire.NewFrame([]string{"61", "DU123"})) // InPosition has no request id -> falls to shared; skip
	rt.dispatch(wire.NewFrame([]string{"11", "1", "9001", "42"}))

	r := <-ch.recv()
	if r.Frame == nil || r.Frame.MessageType() != wire.InExecutionData {
		t.Fatalf("dispatch() did not route ExecutionData to its request id")
	}
}

func TestRouterDispatchErrorWithValidRequestIDIsDelivered(t *testing.T) {
	rt := newRouter(discardLogger{})
	ch := newResponseChannel()
	defer ch.close()
	rt.requests.insert(9001, ch)

	rt.dispatch(wire.NewFrame([]string{"4", "2", "9001", "201", "no security definition"}))

	select {
	case r := <-ch.recv():
		if r.Frame == nil || r.Frame.MessageType() != wire.InError {
			t.Fatalf("dispatch() delivered %+v, want the Error frame", r)
		}
	default:
		t.Fatalf("dispatch() did not deliver a non-warning Error frame with a valid request id")
	}
}

func TestRouterDispatchErrorUnaddressedIsDroppedNotDelivered(t *testing.T) {
	rt := newRouter(discardLogger{})
	ch := newResponseChannel()
	defer ch.close()
	rt.requests.insert(9001, ch)

	// request_id == -1: never delivered to anything, even if 9001 is live.
	rt.dispatch(wire.NewFrame([]string{"4", "2", "-1", "1100", "connectivity lost"}))

	select {
	case r := <-ch.recv():
		t.Fatalf("dispatch() delivered an unaddressed error frame: %+v", r)
	default:
	}
}

func TestRouterDispatchErrorWarningBandIsDroppedNotDelivered(t *testing.T) {
	rt := newRouter(discardLogger{})
	ch := newResponseChannel()
	defer ch.close()
	rt.requests.insert(9001, ch)

	rt.dispatch(wire.NewFrame([]string{"4", "2", "9001", "2104", "market data farm connection is OK"}))

	select {
	case r := <-ch.recv():
		t.Fatalf("dispatch() delivered a warning-band error frame: %+v", r)
	default:
	}
}

func TestRouterExecutionIDLateBinding(t *testing.T) {
	rt := newRouter(discardLogger{})
	ch := newResponseChannel()
	defer ch.close()
	rt.orders.insert(42, ch)

	fields := make([]string, 20)
	for i := range fields {
		fields[i] = "0"
	}
	fields[0] = "11" // InExecutionData
	fields[3] = "42" // order id
	fields[14] = "exec-1"
	rt.dispatch(wire.NewFrame(fields))

	if r := <-ch.recv(); r.Frame == nil || r.Frame.MessageType() != wire.InExecutionData {
		t.Fatalf("ExecutionData did not route to the order id's channel")
	}
	if !rt.executions.contains("exec-1") {
		t.Fatalf("execution id was not late-bound to the order's channel")
	}

	// A later CommissionReport, which carries only the execution id,
	// must find its way back to the same channel.
	rt.dispatch(wire.NewFrame([]string{"59", "1", "exec-1", "1.25", "USD", ""}))
	if r := <-ch.recv(); r.Frame == nil || r.Frame.MessageType() != wire.InCommissionReport {
		t.Fatalf("CommissionReport did not route via the late-bound execution id")
	}
}

// TestRouterExecutionDataEndRoutesByRequestIDNotOrderID covers spec.md
// §8's "no cross-routing" hazard: ExecutionDataEnd's only id field is a
// request id (tag, version, request_id) even though it's dispatched
// through the order-message path. A live order subscription whose
// order id happens to numerically match a live request id must not
// steal a frame meant for the request subscriber.
func TestRouterExecutionDataEndRoutesByRequestIDNotOrderID(t *testing.T) {
	rt := newRouter(discardLogger{})
	orderCh := newResponseChannel()
	defer orderCh.close()
	requestCh := newResponseChannel()
	defer requestCh.close()

	const collidingID = 42
	rt.orders.insert(collidingID, orderCh)
	rt.requests.insert(collidingID, requestCh)

	rt.dispatch(wire.NewFrame([]string{"55", "1", "42"})) // InExecutionDataEnd

	r := <-requestCh.recv()
	if r.Frame == nil || r.Frame.MessageType() != wire.InExecutionDataEnd {
		t.Fatalf("ExecutionDataEnd did not route to the request id's channel")
	}
	select {
	case stolen := <-orderCh.recv():
		t.Fatalf("ExecutionDataEnd was also delivered to the colliding order id's channel: %+v", stolen)
	default:
	}
}

func TestRouterOrderUpdateSinkMirrorsAlongsideOwningChannel(t *testing.T) {
	rt := newRouter(discardLogger{})
	orderCh := newResponseChannel()
	defer orderCh.close()
	sinkCh := newResponseChannel()
	defer sinkCh.close()

	rt.orders.insert(42, orderCh)
	rt.orderUpdate.set(sinkCh)

	fields := []string{"3", "1", "42", "Filled", "100", "0", "150.0", "123456", "0", "150.0", "0", ""}
	rt.dispatch(wire.NewFrame(fields)) // InOrderStatus

	orderR := <-orderCh.recv()
	sinkR := <-sinkCh.recv()
	if orderR.Frame == sinkR.Frame {
		t.Fatalf("order-update sink and owning channel shared the same frame pointer, want independent clones")
	}
	if orderR.Frame.MessageType() != wire.InOrderStatus || sinkR.Frame.MessageType() != wire.InOrderStatus {
		t.Fatalf("both destinations should observe the OrderStatus frame")
	}
}

func TestRouterResetBroadcastsAndClearsEveryRegistry(t *testing.T) {
	rt := newRouter(discardLogger{})
	reqCh := newResponseChannel()
	defer reqCh.close()
	orderCh := newResponseChannel()
	defer orderCh.close()
	sinkCh := newResponseChannel()
	defer sinkCh.close()

	rt.requests.insert(1, reqCh)
	rt.orders.insert(2, orderCh)
	rt.orderUpdate.set(sinkCh)

	rt.reset(ErrConnectionReset)

	for _, ch := range []*responseChannel{reqCh, orderCh, sinkCh} {
		r := <-ch.recv()
		if r.Err != ErrConnectionReset {
			t.Fatalf("reset() delivered %v, want ErrConnectionReset", r.Err)
		}
	}

	if rt.requests.len() != 0 || rt.orders.len() != 0 || rt.orderUpdate.isSet() {
		t.Fatalf("reset() left a registry non-empty")
	}
}
