// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import (
	"sync"

	"code.hybscloud.com/twsbus/internal/wire"
)

// unspecifiedRequestID is the sentinel request id an Error frame
// carries when it isn't a reply to anything the client asked for
// (e.g. an account-level notice).
const unspecifiedRequestID int32 = -1

// warningCodeLow, warningCodeHigh bound the inclusive error-code band
// TWS uses for informational warnings rather than real failures.
const (
	warningCodeLow  = 2100
	warningCodeHigh = 2169
)

func isWarningCode(code int32) bool {
	return code >= warningCodeLow && code <= warningCodeHigh
}

// routingKind classifies an inbound frame for dispatch, mirroring the
// three-way match the original client's dispatcher makes before
// deciding which registry to consult.
type routingKind uint8

const (
	routeOther routingKind = iota
	routeError
	routeByOrder
)

// routingDecision is the outcome of inspecting a frame's message type
// and fields, before any registry is touched.
type routingDecision struct {
	kind      routingKind
	requestID int32 // valid when kind == routeError
	errorCode int32 // valid when kind == routeError
}

// determineRouting classifies msgType/frame without any side effects.
func determineRouting(f *wire.Frame) routingDecision {
	switch f.MessageType() {
	case wire.InError:
		requestID, errorCode := peekErrorFields(f)
		return routingDecision{kind: routeError, requestID: requestID, errorCode: errorCode}
	case wire.InOpenOrder, wire.InOrderStatus, wire.InExecutionData, wire.InExecutionDataEnd,
		wire.InCommissionReport, wire.InCompletedOrder, wire.InOpenOrderEnd, wire.InCompletedOrdersEnd:
		return routingDecision{kind: routeByOrder}
	default:
		return routingDecision{kind: routeOther}
	}
}

// peekErrorFields reads an Error frame's request id and error code
// without disturbing its cursor, so the decision can be made before
// the frame is handed to a decoder. Layout: tag, version, request_id,
// error_code, error_message[, advanced_order_reject_json].
func peekErrorFields(f *wire.Frame) (requestID, errorCode int32) {
	requestID, _ = f.PeekInt(2)
	errorCode, _ = f.PeekInt(3)
	return requestID, errorCode
}

// orderUpdateSink is the single optional destination every order- and
// execution-related frame is mirrored to, set by
// CreateOrderUpdateSubscription and cleared on drop.
type orderUpdateSink struct {
	mu sync.RWMutex
	ch *responseChannel
}

func (s *orderUpdateSink) set(ch *responseChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = ch
}

func (s *orderUpdateSink) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = nil
}

func (s *orderUpdateSink) isSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ch != nil
}

// trySet installs ch as the sink iff none is currently set, atomically
// under the same lock the check and the write both take — the only
// correct way to arbitrate a mutually-exclusive state transition
// between racing callers (unlike a check-then-set pair, which leaves a
// window where two callers can both observe "unset").
func (s *orderUpdateSink) trySet(ch *responseChannel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		return false
	}
	s.ch = ch
	return true
}

// send mirrors r to the sink if one is registered. Returns whether it
// was delivered, so callers can decide whether a failed primary route
// is worth a warning log.
func (s *orderUpdateSink) send(r Response) bool {
	s.mu.RLock()
	ch := s.ch
	s.mu.RUnlock()
	if ch == nil {
		return false
	}
	ch.send(cloneResponse(r))
	return true
}

// router owns the registries a dispatched frame is routed against. Its
// methods are grounded in the original client's dispatch_message /
// process_response / process_orders / send_order_update: the pure
// classification in determineRouting stays side-effect free, while
// dispatch below performs the registry lookups, the execution-id
// late-binding, and the order-update mirroring.
type router struct {
	requests    *keyedSenders[int32]
	orders      *keyedSenders[int32]
	executions  *keyedSenders[string]
	shared      *sharedChannels
	orderUpdate *orderUpdateSink
	log         logger
}

func newRouter(log logger) *router {
	return &router{
		requests:    newKeyedSenders[int32](),
		orders:      newKeyedSenders[int32](),
		executions:  newKeyedSenders[string](),
		shared:      newSharedChannels(channelMappings),
		orderUpdate: &orderUpdateSink{},
		log:         log,
	}
}

// dispatch is the dispatcher goroutine's sole entry point for routing
// a successfully parsed inbound frame.
func (rt *router) dispatch(f *wire.Frame) {
	decision := determineRouting(f)
	switch decision.kind {
	case routeError:
		if decision.requestID == unspecifiedRequestID || isWarningCode(decision.errorCode) {
			rt.logError(f, decision)
			return
		}
		routedToUpdate := rt.orderUpdate.send(Response{Frame: f})
		rt.routeByRequestID(f, routedToUpdate)
	case routeByOrder:
		rt.routeOrderMessage(f)
	default:
		rt.routeByRequestID(f, false)
	}
}

// logError records an Error frame that carries no deliverable
// subscription (either unaddressed or in the informational-warning
// band), at a log level matching the band.
func (rt *router) logError(f *wire.Frame, d routingDecision) {
	// Fields: tag(0) version(1) request_id(2) error_code(3) error_message(4) [advanced_order_reject_json(5)]
	msg, _ := f.PeekString(4)
	if isWarningCode(d.errorCode) {
		rt.log.Warnf("twsbus: request_id=%d warning_code=%d warning_message=%q", d.requestID, d.errorCode, msg)
		return
	}
	rt.log.Warnf("twsbus: request_id=%d error_code=%d error_message=%q (unaddressed)", d.requestID, d.errorCode, msg)
}

// routeByRequestID implements process_response: try the per-request
// registry, then the per-order registry (an Error frame may carry an
// order's request id), then shared-by-type, else drop with a log.
func (rt *router) routeByRequestID(f *wire.Frame, routedElsewhere bool) {
	requestID, hasRequestID := f.RequestID()
	if hasRequestID && rt.requests.contains(requestID) {
		rt.requests.send(requestID, Response{Frame: f}, rt.log)
		return
	}
	if hasRequestID && rt.orders.contains(requestID) {
		rt.orders.send(requestID, Response{Frame: f}, rt.log)
		return
	}
	msgType := f.MessageType()
	if rt.shared.containsSender(msgType) {
		rt.shared.sendMessage(msgType, Response{Frame: f})
		return
	}
	if !routedElsewhere {
		rt.log.Debugf("twsbus: no recipient for message type %d", msgType)
	}
}

// routeOrderMessage implements process_orders, including the
// execution-id late-binding side effect: the first ExecutionData frame
// for a live order or request registers its execution id so a later
// CommissionReport (which only carries an execution id, not an order
// or request id) finds its way back to the same subscriber.
func (rt *router) routeOrderMessage(f *wire.Frame) {
	switch f.MessageType() {
	case wire.InExecutionData:
		rt.routeExecutionData(f)
	case wire.InExecutionDataEnd:
		rt.routeByOrderOrRequest(f, false)
	case wire.InOpenOrder, wire.InOrderStatus:
		rt.routeOpenOrderOrStatus(f)
	case wire.InCompletedOrder, wire.InOpenOrderEnd, wire.InCompletedOrdersEnd:
		rt.shared.sendMessage(f.MessageType(), Response{Frame: f})
	case wire.InCommissionReport:
		rt.routeCommissionReport(f)
	default:
		rt.log.Warnf("twsbus: unhandled order message type %d", f.MessageType())
	}
}

func (rt *router) routeExecutionData(f *wire.Frame) {
	routedToUpdate := rt.orderUpdate.send(Response{Frame: f})

	orderID, hasOrderID := f.OrderID()
	if hasOrderID {
		if ch, ok := rt.orders.copySender(orderID); ok {
			if execID, hasExecID := f.ExecutionID(); hasExecID {
				rt.executions.insert(execID, ch)
			}
			rt.orders.send(orderID, Response{Frame: f}, rt.log)
			return
		}
	}
	requestID, hasRequestID := f.RequestID()
	if hasRequestID {
		if ch, ok := rt.requests.copySender(requestID); ok {
			if execID, hasExecID := f.ExecutionID(); hasExecID {
				rt.executions.insert(execID, ch)
			}
			rt.requests.send(requestID, Response{Frame: f}, rt.log)
			return
		}
	}
	if !routedToUpdate {
		rt.log.Warnf("twsbus: could not route execution data (order_id=%v request_id=%v)", orderID, requestID)
	}
}

// routeByOrderOrRequest implements the order-id-then-request-id
// fallback used for ExecutionDataEnd.
func (rt *router) routeByOrderOrRequest(f *wire.Frame, sentElsewhere bool) {
	if orderID, ok := f.OrderID(); ok && rt.orders.contains(orderID) {
		rt.orders.send(orderID, Response{Frame: f}, rt.log)
		return
	}
	if requestID, ok := f.RequestID(); ok && rt.requests.contains(requestID) {
		rt.requests.send(requestID, Response{Frame: f}, rt.log)
		return
	}
	if !sentElsewhere {
		rt.log.Warnf("twsbus: could not route message type %d", f.MessageType())
	}
}

func (rt *router) routeOpenOrderOrStatus(f *wire.Frame) {
	routedToUpdate := rt.orderUpdate.send(Response{Frame: f})

	orderID, hasOrderID := f.OrderID()
	if hasOrderID && rt.orders.contains(orderID) {
		rt.orders.send(orderID, Response{Frame: f}, rt.log)
		return
	}
	if rt.shared.containsSender(wire.InOpenOrder) {
		rt.shared.sendMessage(f.MessageType(), Response{Frame: f})
		return
	}
	if !routedToUpdate {
		rt.log.Warnf("twsbus: could not route message type %d", f.MessageType())
	}
}

func (rt *router) routeCommissionReport(f *wire.Frame) {
	routedToUpdate := rt.orderUpdate.send(Response{Frame: f})

	execID, ok := f.ExecutionID()
	if ok && rt.executions.contains(execID) {
		rt.executions.send(execID, Response{Frame: f}, rt.log)
		return
	}
	if !routedToUpdate {
		rt.log.Warnf("twsbus: could not route commission report (execution_id=%q)", execID)
	}
}

// reset broadcasts err to every live subscription and clears every
// registry, used on a full connection reset or shutdown. No replay:
// a caller that wants the data again must resubmit the request.
func (rt *router) reset(err error) {
	r := Response{Err: err}
	rt.requests.notifyAll(r)
	rt.orders.notifyAll(r)
	rt.executions.notifyAll(r)
	rt.shared.notifyAll(r)
	rt.orderUpdate.send(r)

	rt.requests.clear()
	rt.orders.clear()
	rt.executions.clear()
	rt.orderUpdate.clear()
}
