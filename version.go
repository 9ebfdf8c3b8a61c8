// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package twsbus

// MaxServerVersion is the highest protocol version this module knows
// how to speak. A server announcing a higher version still works —
// newer optional fields are simply never encoded/decoded — but
// feature checks never exceed this ceiling.
const MaxServerVersion = 178

// Feature-gated minimum server versions, keyed by symbolic name so
// call sites read as "check POSITIONS" rather than a bare magic
// number. Only the subset this module's domain decoders exercise is
// populated; the rest of the real feature table (~150 entries in the
// full protocol) is outside this module's scope per spec.md §1.
const (
	FeaturePositions             = "POSITIONS"
	FeatureTradingClass          = "TRADING_CLASS"
	FeatureSSHORTXOld            = "SSHORTX_OLD"
	FeatureDeltaNeutralConID     = "DELTA_NEUTRAL_CONID"
	FeaturePegBestPegMidOffsets  = "PEGBEST_PEGMID_OFFSETS"
	FeatureAdvancedOrderReject   = "ADVANCED_ORDER_REJECT"
	FeatureFamilyCodes           = "FAMILY_CODES"
	FeatureMarketRules           = "MARKET_RULES"
	FeatureCompletedOrders       = "COMPLETED_ORDERS"
)

var featureMinimums = map[string]int{
	FeaturePositions:            67,
	FeatureTradingClass:         68,
	FeatureSSHORTXOld:           71,
	FeatureDeltaNeutralConID:    73,
	FeaturePegBestPegMidOffsets: 160,
	FeatureAdvancedOrderReject:  145,
	FeatureFamilyCodes:          71,
	FeatureMarketRules:          106,
	FeatureCompletedOrders:      150,
}

// checkServerVersion returns a *ServerVersionError if serverVersion is
// below the minimum required for feature.
func checkServerVersion(serverVersion int, feature string) error {
	min, ok := featureMinimums[feature]
	if !ok {
		return nil
	}
	if serverVersion < min {
		return &ServerVersionError{Required: min, Actual: serverVersion, Feature: feature}
	}
	return nil
}
