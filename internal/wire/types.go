// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the TWS/Gateway binary wire protocol: frame
// framing, field encoding, and the message-type tables the bus and
// router key off of. It has no knowledge of sockets staying up,
// subscriptions, or reconnection; see the parent package for that.
package wire

// OutgoingMessageType identifies a request frame's leading tag.
type OutgoingMessageType int32

// IncomingMessageType identifies a response frame's leading tag.
type IncomingMessageType int32

// Outgoing message types. Values match the wire protocol's documented
// numbering; only the ones this module's decoders or the channel-mapping
// table reference carry a name here.
const (
	OutRequestMktData               OutgoingMessageType = 1
	OutCancelMktData                OutgoingMessageType = 2
	OutPlaceOrder                   OutgoingMessageType = 3
	OutCancelOrder                  OutgoingMessageType = 4
	OutRequestOpenOrders            OutgoingMessageType = 5
	OutRequestAccountData           OutgoingMessageType = 6
	OutRequestExecutions            OutgoingMessageType = 7
	OutRequestIDs                   OutgoingMessageType = 8
	OutRequestContractData          OutgoingMessageType = 9
	OutRequestMktDepth               OutgoingMessageType = 10
	OutCancelMktDepth               OutgoingMessageType = 11
	OutRequestNewsBulletins         OutgoingMessageType = 12
	OutCancelNewsBulletins          OutgoingMessageType = 13
	OutRequestAutoOpenOrders        OutgoingMessageType = 15
	OutRequestAllOpenOrders         OutgoingMessageType = 16
	OutRequestManagedAccounts       OutgoingMessageType = 17
	OutRequestHistoricalData        OutgoingMessageType = 20
	OutRequestScannerSubscription   OutgoingMessageType = 22
	OutCancelScannerSubscription    OutgoingMessageType = 23
	OutRequestScannerParameters     OutgoingMessageType = 24
	OutCancelHistoricalData         OutgoingMessageType = 25
	OutRequestCurrentTime           OutgoingMessageType = 49
	OutRequestPositions             OutgoingMessageType = 61
	OutRequestAccountSummary        OutgoingMessageType = 62
	OutCancelAccountSummary         OutgoingMessageType = 63
	OutCancelPositions              OutgoingMessageType = 64
	OutStartAPI                     OutgoingMessageType = 71
	OutRequestFamilyCodes           OutgoingMessageType = 80
	OutRequestMarketRule            OutgoingMessageType = 91
	OutRequestCompletedOrders       OutgoingMessageType = 99
)

// Incoming message types.
const (
	InTickPrice               IncomingMessageType = 1
	InTickSize                IncomingMessageType = 2
	InOrderStatus              IncomingMessageType = 3
	InError                    IncomingMessageType = 4
	InOpenOrder                IncomingMessageType = 5
	InAccountValue             IncomingMessageType = 6
	InPortfolioValue           IncomingMessageType = 7
	InAccountUpdateTime        IncomingMessageType = 8
	InNextValidID              IncomingMessageType = 9
	InContractData             IncomingMessageType = 10
	InExecutionData            IncomingMessageType = 11
	InMarketDepth              IncomingMessageType = 12
	InMarketDepthL2            IncomingMessageType = 13
	InNewsBulletins            IncomingMessageType = 14
	InManagedAccounts          IncomingMessageType = 15
	InScannerParameters        IncomingMessageType = 19
	InScannerData              IncomingMessageType = 20
	InCurrentTime              IncomingMessageType = 49
	InContractDataEnd          IncomingMessageType = 52
	InOpenOrderEnd             IncomingMessageType = 53
	InAccountDownloadEnd       IncomingMessageType = 54
	InExecutionDataEnd         IncomingMessageType = 55
	InCommissionReport         IncomingMessageType = 59
	InPosition                 IncomingMessageType = 61
	InPositionEnd              IncomingMessageType = 62
	InFamilyCodes              IncomingMessageType = 78
	InMarketRule               IncomingMessageType = 93
	InCompletedOrder           IncomingMessageType = 101
	InCompletedOrdersEnd       IncomingMessageType = 102
)

// NotValid is returned by Frame.MessageType when the frame is empty or
// its leading tag does not parse as an integer.
const NotValid IncomingMessageType = -1

// requestIDIndex reports the field index (after the message-type tag,
// zero-based against the full field slice) carrying the request id for
// message types that have one, mirroring the original client's
// request_id_index lookup table.
func requestIDIndex(t IncomingMessageType) (int, bool) {
	switch t {
	case InError, InContractData, InContractDataEnd, InExecutionData, InExecutionDataEnd,
		InScannerData, InMarketDepth, InMarketDepthL2, InTickPrice, InTickSize:
		return 2, true
	default:
		return 0, false
	}
}

// orderIDIndex reports the field index carrying the order id, for
// message types that carry one. ExecutionDataEnd's wire layout (tag,
// version, request_id) carries no order id at all — its field 2 is the
// request id already reported by requestIDIndex, and claiming it here
// too would let a live order subscription steal an ExecutionDataEnd
// meant for a request subscriber whenever the two ids collide
// numerically.
func orderIDIndex(t IncomingMessageType) (int, bool) {
	switch t {
	case InOpenOrder, InOrderStatus:
		return 2, true
	case InExecutionData:
		return 3, true
	default:
		return 0, false
	}
}

// executionIDIndex reports the field index carrying the execution id,
// for the two message types that pin an execution.
func executionIDIndex(t IncomingMessageType) (int, bool) {
	switch t {
	case InExecutionData:
		return 14, true
	case InCommissionReport:
		return 2, true
	default:
		return 0, false
	}
}
