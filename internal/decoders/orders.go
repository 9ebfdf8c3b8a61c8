// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoders

import "code.hybscloud.com/twsbus/internal/wire"

// Order is the subset of order fields every OpenOrder/OrderStatus
// frame carries that this module's callers are expected to need.
type Order struct {
	OrderID   int32
	ClientID  int32
	Action    string
	TotalQty  float64
	OrderType string
	LimitPrice float64
	AuxPrice   float64
}

// OrderStatusInfo mirrors the OrderStatus frame's own fields.
type OrderStatusInfo struct {
	Status        string
	Filled        float64
	Remaining     float64
	AvgFillPrice  float64
	PermID        int64
	ParentID      int32
	LastFillPrice float64
	WhyHeld       string
}

// Execution mirrors an ExecutionData frame.
type Execution struct {
	OrderID     int32
	ExecutionID string
	Time        string
	Account     string
	Exchange    string
	Side        string
	Shares      float64
	Price       float64
	PermID      int64
	ClientID    int32
	Liquidation int32
}

// Commission mirrors a CommissionReport frame.
type Commission struct {
	ExecutionID     string
	Commission      float64
	Currency        string
	RealizedPNL     float64
	HasRealizedPNL  bool
}

// OrderEventKind discriminates OrderEvent's payload.
type OrderEventKind uint8

const (
	OrderEventOpenOrder OrderEventKind = iota
	OrderEventOrderStatus
	OrderEventExecution
	OrderEventExecutionEnd
	OrderEventCommission
)

// OrderEvent is the multiplexed value both the order-update stream
// (CreateOrderUpdateSubscription) and a PlaceOrder subscription yield:
// every order-lifecycle message type this module decodes, tagged by
// Kind so a caller can switch on what actually arrived.
type OrderEvent struct {
	Kind       OrderEventKind
	Order      Order
	Contract   Contract
	Status     OrderStatusInfo
	Execution  Execution
	Commission Commission
}

// OrderEventDecoder backs both Subscription[OrderEvent] streams.
type OrderEventDecoder struct{}

func (OrderEventDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{
		wire.InOpenOrder, wire.InOrderStatus, wire.InExecutionData, wire.InExecutionDataEnd, wire.InCommissionReport,
	}
}

func (OrderEventDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (OrderEvent, error) {
	var e OrderEvent
	switch f.MessageType() {
	case wire.InOrderStatus:
		e.Kind = OrderEventOrderStatus
		f.Skip() // message type
		f.Skip() // version
		var err error
		if e.Order.OrderID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Status.Status, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Status.Filled, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Status.Remaining, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Status.AvgFillPrice, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Status.PermID, err = f.NextLong(); err != nil {
			return e, err
		}
		if e.Status.ParentID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Status.LastFillPrice, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Order.ClientID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Status.WhyHeld, err = f.NextString(); err != nil {
			return e, err
		}
		return e, nil
	case wire.InOpenOrder:
		e.Kind = OrderEventOpenOrder
		f.Skip() // message type
		f.Skip() // version
		var err error
		if e.Order.OrderID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Contract.ConID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Contract.Symbol, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Contract.SecType, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Contract.Exchange, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Contract.Currency, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Order.Action, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Order.TotalQty, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Order.OrderType, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Order.LimitPrice, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Order.AuxPrice, err = f.NextDouble(); err != nil {
			return e, err
		}
		return e, nil
	case wire.InExecutionData:
		e.Kind = OrderEventExecution
		f.Skip() // message type
		f.Skip() // version
		f.Skip() // request id
		var err error
		if e.Execution.OrderID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Contract.ConID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Contract.Symbol, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Contract.SecType, err = f.NextString(); err != nil {
			return e, err
		}
		f.Skip() // last trade date / contract month
		f.Skip() // strike
		f.Skip() // right
		f.Skip() // multiplier
		f.Skip() // exchange (contract)
		if e.Contract.Currency, err = f.NextString(); err != nil {
			return e, err
		}
		f.Skip() // local symbol
		if e.Execution.ExecutionID, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Execution.Time, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Execution.Account, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Execution.Exchange, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Execution.Side, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Execution.Shares, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Execution.Price, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Execution.PermID, err = f.NextLong(); err != nil {
			return e, err
		}
		if e.Execution.ClientID, err = f.NextInt(); err != nil {
			return e, err
		}
		if e.Execution.Liquidation, err = f.NextInt(); err != nil {
			return e, err
		}
		return e, nil
	case wire.InExecutionDataEnd:
		e.Kind = OrderEventExecutionEnd
		return e, nil
	case wire.InCommissionReport:
		e.Kind = OrderEventCommission
		f.Skip()
		f.Skip()
		var err error
		if e.Commission.ExecutionID, err = f.NextString(); err != nil {
			return e, err
		}
		if e.Commission.Commission, err = f.NextDouble(); err != nil {
			return e, err
		}
		if e.Commission.Currency, err = f.NextString(); err != nil {
			return e, err
		}
		rpl, ok, err := f.NextOptionalDouble()
		if err != nil {
			return e, err
		}
		e.Commission.RealizedPNL, e.Commission.HasRealizedPNL = rpl, ok
		return e, nil
	default:
		return e, &wire.UnexpectedResponseError{MessageType: f.MessageType()}
	}
}

func (OrderEventDecoder) CancelMessage(ctx wire.DecoderContext, requestID int32, hasRequestID bool) (*wire.RequestMessage, error) {
	if !hasRequestID {
		return nil, wire.ErrNotImplemented
	}
	req := wire.NewRequest(wire.OutCancelOrder)
	req.PushInt(1) // version
	req.PushInt(requestID)
	return req, nil
}

// OpenOrdersDecoder backs the RequestOpenOrders / RequestAllOpenOrders
// / RequestAutoOpenOrders shared stream: OpenOrder and OrderStatus
// frames delegate to OrderEventDecoder; OpenOrderEnd is this stream's
// terminal marker.
type OpenOrdersDecoder struct{}

func (OpenOrdersDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InOpenOrder, wire.InOrderStatus, wire.InOpenOrderEnd}
}

func (OpenOrdersDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (OrderEvent, error) {
	if f.MessageType() == wire.InOpenOrderEnd {
		return OrderEvent{}, wire.ErrEndOfStream
	}
	return OrderEventDecoder{}.Decode(ctx, f)
}

func (OpenOrdersDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	return nil, wire.ErrNotImplemented
}

// CompletedOrder mirrors a CompletedOrder frame: an order plus its
// resolved contract and status, no live order id (completed orders are
// historical).
type CompletedOrder struct {
	Order    Order
	Contract Contract
	Status   OrderStatusInfo
	End      bool
}

// CompletedOrdersDecoder backs RequestCompletedOrders.
type CompletedOrdersDecoder struct{}

func (CompletedOrdersDecoder) ResponseMessageIDs() []wire.IncomingMessageType {
	return []wire.IncomingMessageType{wire.InCompletedOrder, wire.InCompletedOrdersEnd}
}

func (CompletedOrdersDecoder) Decode(ctx wire.DecoderContext, f *wire.Frame) (CompletedOrder, error) {
	var c CompletedOrder
	if f.MessageType() == wire.InCompletedOrdersEnd {
		c.End = true
		return c, nil
	}
	f.Skip() // message type
	var err error
	if c.Contract.ConID, err = f.NextInt(); err != nil {
		return c, err
	}
	if c.Contract.Symbol, err = f.NextString(); err != nil {
		return c, err
	}
	if c.Contract.SecType, err = f.NextString(); err != nil {
		return c, err
	}
	if c.Order.Action, err = f.NextString(); err != nil {
		return c, err
	}
	if c.Order.TotalQty, err = f.NextDouble(); err != nil {
		return c, err
	}
	if c.Order.OrderType, err = f.NextString(); err != nil {
		return c, err
	}
	if c.Status.Status, err = f.NextString(); err != nil {
		return c, err
	}
	return c, nil
}

func (CompletedOrdersDecoder) CancelMessage(wire.DecoderContext, int32, bool) (*wire.RequestMessage, error) {
	return nil, wire.ErrNotImplemented
}

// NewPlaceOrderRequest encodes a minimal PlaceOrder frame. The full
// order schema has well over a hundred optional fields gated by
// server-version feature checks; this module's scope covers the core
// order shape a market or limit order needs, per this module's decoder
// scope — algo params, combo legs, and the other advanced-order
// surfaces stay out of scope.
func NewPlaceOrderRequest(orderID int32, c Contract, action, orderType string, quantity, limitPrice, auxPrice float64) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutPlaceOrder)
	req.PushInt(orderID)
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
	req.PushString(action)
	req.PushDouble(quantity)
	req.PushString(orderType)
	req.PushDouble(limitPrice)
	req.PushDouble(auxPrice)
	return req
}

// NewCancelOrderRequest encodes a CancelOrder frame.
func NewCancelOrderRequest(orderID int32) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutCancelOrder)
	req.PushInt(1) // version
	req.PushInt(orderID)
	return req
}

// NewRequestOpenOrdersRequest encodes a RequestOpenOrders frame
// (orders placed by this client id only).
func NewRequestOpenOrdersRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestOpenOrders)
}

// NewRequestAllOpenOrdersRequest encodes a RequestAllOpenOrders frame
// (every client's open orders, TWS permitting).
func NewRequestAllOpenOrdersRequest() *wire.RequestMessage {
	return wire.NewRequest(wire.OutRequestAllOpenOrders)
}

// NewRequestAutoOpenOrdersRequest encodes a RequestAutoOpenOrders
// frame, binding future manually-placed orders to this client.
func NewRequestAutoOpenOrdersRequest(autoBind bool) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestAutoOpenOrders)
	req.PushBool(autoBind)
	return req
}

// NewRequestCompletedOrdersRequest encodes a RequestCompletedOrders
// frame.
func NewRequestCompletedOrdersRequest(apiOnly bool) *wire.RequestMessage {
	req := wire.NewRequest(wire.OutRequestCompletedOrders)
	req.PushBool(apiOnly)
	return req
}
