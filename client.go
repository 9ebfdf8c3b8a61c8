// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"context"
	"time"

	"code.hybscloud.com/twsbus/internal/decoders"
	"code.hybscloud.com/twsbus/internal/wire"
)

// Client is the package's public entry point: a connected bus plus the
// domain call surface built on top of it. Construct one with Connect.
type Client struct {
	bus *Bus
}

// Connect dials addr, runs the handshake, and starts the dispatcher
// and cleanup goroutines. The returned Client is ready for use; call
// Close when done with it.
func Connect(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	o := defaultOptions
	for _, apply := range opts {
		apply(&o)
	}

	sock, err := wire.NewTCPSocket(addr)
	if err != nil {
		return nil, err
	}
	hr, err := handshake(sock, &o)
	if err != nil {
		return nil, err
	}

	bus := NewBus(sock, hr, &o)
	bus.Start(ctx)
	return &Client{bus: bus}, nil
}

// Close shuts the bus down and waits for its goroutines to exit.
func (c *Client) Close() error {
	c.bus.Shutdown()
	return c.bus.Wait()
}

// ServerVersion returns the protocol version currently negotiated.
func (c *Client) ServerVersion() int32 { return c.bus.ServerVersion() }

func (c *Client) decoderCtx(outgoing wire.OutgoingMessageType) DecoderContext {
	return DecoderContext{
		ServerVersion: c.bus.ServerVersion(),
		Location:      time.UTC,
		Outgoing:      outgoing,
	}
}

// requestSubscription is the per-request-id builder: allocate a
// request id, write req, and wrap the registered channel as a typed
// Subscription. Mirrors spec.md §4.9's per-id request builder.
func requestSubscription[T any](c *Client, feature string, outgoing wire.OutgoingMessageType, decoder StreamDecoder[T], buildReq func(requestID int32) *wire.RequestMessage) (*Subscription[T], error) {
	if feature != "" {
		if err := checkServerVersion(int(c.bus.ServerVersion()), feature); err != nil {
			return nil, err
		}
	}
	requestID := c.bus.NextRequestID()
	req := buildReq(requestID)
	ch, err := c.bus.openRequest(requestID, req)
	if err != nil {
		return nil, err
	}
	ctx := c.decoderCtx(outgoing)
	sig := signal{kind: signalRequest, id: requestID}
	return newSubscription[T](c.bus, ch.recv(), decoder, ctx, sig, true, requestID, true), nil
}

// orderSubscription is the per-order-id builder used by PlaceOrder.
func orderSubscription[T any](c *Client, outgoing wire.OutgoingMessageType, decoder StreamDecoder[T], orderID int32, req *wire.RequestMessage) (*Subscription[T], error) {
	ch, err := c.bus.openOrder(orderID, req)
	if err != nil {
		return nil, err
	}
	ctx := c.decoderCtx(outgoing)
	sig := signal{kind: signalOrder, id: orderID}
	return newSubscription[T](c.bus, ch.recv(), decoder, ctx, sig, true, orderID, true), nil
}

// sharedSubscription is the shared-by-type builder used by requests
// with no per-call id (RequestPositions and similar).
func sharedSubscription[T any](c *Client, feature string, outgoing wire.OutgoingMessageType, decoder StreamDecoder[T], req *wire.RequestMessage) (*Subscription[T], error) {
	if feature != "" {
		if err := checkServerVersion(int(c.bus.ServerVersion()), feature); err != nil {
			return nil, err
		}
	}
	ch, err := c.bus.openShared(outgoing, req)
	if err != nil {
		return nil, err
	}
	ctx := c.decoderCtx(outgoing)
	return newSubscription[T](c.bus, ch.recv(), decoder, ctx, signal{}, false, 0, false), nil
}

// RequestPositions opens the account-positions stream.
func (c *Client) RequestPositions() (*Subscription[decoders.PositionUpdate], error) {
	return sharedSubscription[decoders.PositionUpdate](c, FeaturePositions, wire.OutRequestPositions,
		decoders.PositionsDecoder{}, decoders.NewRequestPositionsRequest())
}

// RequestAccountData opens the account/portfolio-value stream for
// acctCode. subscribe controls whether updates keep flowing after the
// initial snapshot.
func (c *Client) RequestAccountData(subscribe bool, acctCode string) (*Subscription[decoders.AccountUpdate], error) {
	return sharedSubscription[decoders.AccountUpdate](c, "", wire.OutRequestAccountData,
		decoders.AccountDataDecoder{}, decoders.NewRequestAccountDataRequest(subscribe, acctCode))
}

// RequestCurrentTime asks the server for its current time. The returned
// Subscription yields each CurrentTime reply as a value; the decoder
// never reports EndOfStream, so a Next after the reply blocks until
// another CurrentTime frame or a bus reset arrives.
func (c *Client) RequestCurrentTime() (*Subscription[time.Time], error) {
	return sharedSubscription[time.Time](c, "", wire.OutRequestCurrentTime,
		decoders.CurrentTimeDecoder{}, decoders.NewRequestCurrentTimeRequest())
}

// RequestFamilyCodes asks for the account-family-code table.
func (c *Client) RequestFamilyCodes() (*Subscription[[]decoders.FamilyCode], error) {
	return sharedSubscription[[]decoders.FamilyCode](c, FeatureFamilyCodes, wire.OutRequestFamilyCodes,
		decoders.FamilyCodesDecoder{}, decoders.NewRequestFamilyCodesRequest())
}

// RequestScannerParameters asks for the XML scanner-parameters document.
func (c *Client) RequestScannerParameters() (*Subscription[string], error) {
	return sharedSubscription[string](c, "", wire.OutRequestScannerParameters,
		decoders.ScannerParametersDecoder{}, decoders.NewRequestScannerParametersRequest())
}

// RequestNewsBulletins opens the news-bulletins stream.
func (c *Client) RequestNewsBulletins(allMessages bool) (*Subscription[decoders.NewsBulletin], error) {
	return sharedSubscription[decoders.NewsBulletin](c, "", wire.OutRequestNewsBulletins,
		decoders.NewsBulletinsDecoder{}, decoders.NewRequestNewsBulletinsRequest(allMessages))
}

// RequestMarketRule asks for a market rule's price-increment table.
func (c *Client) RequestMarketRule(marketRuleID int32) (*Subscription[[]decoders.PriceIncrement], error) {
	return sharedSubscription[[]decoders.PriceIncrement](c, FeatureMarketRules, wire.OutRequestMarketRule,
		decoders.MarketRuleDecoder{}, decoders.NewRequestMarketRuleRequest(marketRuleID))
}

// RequestOpenOrders opens the "orders placed by this client id" stream.
func (c *Client) RequestOpenOrders() (*Subscription[decoders.OrderEvent], error) {
	return sharedSubscription[decoders.OrderEvent](c, "", wire.OutRequestOpenOrders,
		decoders.OpenOrdersDecoder{}, decoders.NewRequestOpenOrdersRequest())
}

// RequestAllOpenOrders opens the "every client's open orders" stream.
func (c *Client) RequestAllOpenOrders() (*Subscription[decoders.OrderEvent], error) {
	return sharedSubscription[decoders.OrderEvent](c, "", wire.OutRequestAllOpenOrders,
		decoders.OpenOrdersDecoder{}, decoders.NewRequestAllOpenOrdersRequest())
}

// RequestCompletedOrders opens the completed-orders stream. apiOnly
// restricts it to orders this API session placed.
func (c *Client) RequestCompletedOrders(apiOnly bool) (*Subscription[decoders.CompletedOrder], error) {
	return sharedSubscription[decoders.CompletedOrder](c, FeatureCompletedOrders, wire.OutRequestCompletedOrders,
		decoders.CompletedOrdersDecoder{}, decoders.NewRequestCompletedOrdersRequest(apiOnly))
}

// RequestContractDetails opens a one-shot contract-lookup stream for a
// (possibly partially specified) contract.
func (c *Client) RequestContractDetails(contract decoders.Contract) (*Subscription[decoders.ContractDetailsUpdate], error) {
	return requestSubscription[decoders.ContractDetailsUpdate](c, "", wire.OutRequestContractData,
		decoders.ContractDetailsDecoder{}, func(requestID int32) *wire.RequestMessage {
			return decoders.NewRequestContractDetailsRequest(requestID, contract)
		})
}

// PlaceOrder allocates an order id, submits the order, and returns a
// Subscription that yields every OpenOrder / OrderStatus / ExecutionData
// / ExecutionDataEnd / CommissionReport event routed to this order,
// whether or not a CreateOrderUpdateSubscription sink is also live.
func (c *Client) PlaceOrder(contract decoders.Contract, action, orderType string, quantity, limitPrice, auxPrice float64) (int32, *Subscription[decoders.OrderEvent], error) {
	if action == "" || orderType == "" || quantity <= 0 {
		return 0, nil, ErrInvalidArgument
	}
	orderID := c.bus.NextOrderID()
	req := decoders.NewPlaceOrderRequest(orderID, contract, action, orderType, quantity, limitPrice, auxPrice)
	sub, err := orderSubscription[decoders.OrderEvent](c, wire.OutPlaceOrder, decoders.OrderEventDecoder{}, orderID, req)
	if err != nil {
		return 0, nil, err
	}
	return orderID, sub, nil
}

// CancelOrder sends a CancelOrder frame for orderID. It does not wait
// for a terminal OrderStatus; the PlaceOrder Subscription for the same
// order id (if still held) will observe the resulting status change.
func (c *Client) CancelOrder(orderID int32) error {
	return c.bus.sendMessage(decoders.NewCancelOrderRequest(orderID))
}

// CreateOrderUpdateSubscription opens the single, process-wide
// order-update sink every order- and execution-related frame is
// mirrored to, regardless of which (if any) per-order or per-request
// subscription also receives it. Returns ErrAlreadySubscribed if one
// is already live.
func (c *Client) CreateOrderUpdateSubscription() (*Subscription[decoders.OrderEvent], error) {
	ch, err := c.bus.openOrderUpdateStream()
	if err != nil {
		return nil, err
	}
	ctx := c.decoderCtx(0)
	sig := signal{kind: signalOrderUpdateStream}
	return newSubscription[decoders.OrderEvent](c.bus, ch.recv(), decoders.OrderEventDecoder{}, ctx, sig, true, 0, false), nil
}
