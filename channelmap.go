// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

import "code.hybscloud.com/twsbus/internal/wire"

// channelMapping pairs an outgoing request type with the incoming
// message types that answer it. This is the single source of truth
// the registry builds its shared-by-type channel table from.
type channelMapping struct {
	request   wire.OutgoingMessageType
	responses []wire.IncomingMessageType
}

// channelMappings is the abbreviated incoming↔outgoing table from
// spec.md §6, extended with the order-lifecycle and account-data
// mappings needed by the domain decoders this module ships. The full
// protocol table has ~60 entries; only the mappings a shipped decoder
// exercises are listed here; everything else remains addressable only
// through wire's message-type constants, per SPEC_FULL.md's domain
// decoder scope.
var channelMappings = []channelMapping{
	{wire.OutRequestPositions, []wire.IncomingMessageType{wire.InPosition, wire.InPositionEnd}},
	{wire.OutRequestAccountData, []wire.IncomingMessageType{
		wire.InAccountValue, wire.InPortfolioValue, wire.InAccountUpdateTime, wire.InAccountDownloadEnd,
	}},
	{wire.OutRequestOpenOrders, []wire.IncomingMessageType{wire.InOpenOrder, wire.InOrderStatus, wire.InOpenOrderEnd}},
	{wire.OutRequestAllOpenOrders, []wire.IncomingMessageType{wire.InOpenOrder, wire.InOrderStatus, wire.InOpenOrderEnd}},
	{wire.OutRequestAutoOpenOrders, []wire.IncomingMessageType{wire.InOpenOrder, wire.InOrderStatus, wire.InOpenOrderEnd}},
	{wire.OutRequestCompletedOrders, []wire.IncomingMessageType{wire.InCompletedOrder, wire.InCompletedOrdersEnd}},
	{wire.OutRequestManagedAccounts, []wire.IncomingMessageType{wire.InManagedAccounts}},
	{wire.OutRequestCurrentTime, []wire.IncomingMessageType{wire.InCurrentTime}},
	{wire.OutRequestFamilyCodes, []wire.IncomingMessageType{wire.InFamilyCodes}},
	{wire.OutRequestScannerParameters, []wire.IncomingMessageType{wire.InScannerParameters}},
	{wire.OutRequestNewsBulletins, []wire.IncomingMessageType{wire.InNewsBulletins}},
	{wire.OutRequestMarketRule, []wire.IncomingMessageType{wire.InMarketRule}},
}
