package domain

import "math/big"

// baseFeeHeadroom over-provisions the fee ceiling against base-fee spikes
// between quoting and inclusion. Unused headroom is refunded by the
// protocol's fee settlement, the ceiling is a cap, not a charge.
const baseFeeHeadroom = 3

// FeeData is the network-supplied fee snapshot for one pending transfer.
// It is fetched fresh per transfer and never cached: base-fee conditions
// change block to block.
type FeeData struct {
	SuggestedTip     *big.Int // node-suggested priority fee per gas
	SuggestedCeiling *big.Int // node-derived max fee per gas
	BaseFee          *big.Int // latest block base fee, nil on pre-1559 chains
}

// FeeOverrides carries caller-supplied fee parameters. Nil pointer and zero
// gas limit mean "not overridden".
type FeeOverrides struct {
	Tip      *big.Int
	MaxFee   *big.Int
	GasLimit uint64
}

// FeeQuote is the computed (tip, ceiling, gas limit) triple for exactly one
// pending transaction. All quantities are integer wei.
type FeeQuote struct {
	Tip      *big.Int // priority fee per gas
	MaxFee   *big.Int // fee ceiling per gas
	GasLimit uint64
}

// Cost returns the worst-case fee charge, MaxFee × GasLimit.
func (q FeeQuote) Cost() *big.Int {
	return new(big.Int).Mul(q.MaxFee, new(big.Int).SetUint64(q.GasLimit))
}

// ComputeQuote derives a FeeQuote from network fee data, caller overrides,
// and the configured floors. Rules:
//
//   - tip: the override wins exactly when present (fee-tuned variants rely on
//     a zero tip passing through); otherwise max(suggested, minTip).
//   - ceiling: max(override, suggested ceiling, tip + 3×baseFee). The
//     override never lowers the ceiling below inclusion economics.
//   - gas limit: override when positive, else defaultGasLimit.
//
// Integer arithmetic only. A nil BaseFee is treated as zero.
func ComputeQuote(overrides FeeOverrides, data FeeData, minTip *big.Int, defaultGasLimit uint64) FeeQuote {
	tip := overrides.Tip
	if tip == nil {
		tip = bigMax(data.SuggestedTip, minTip)
	}
	tip = new(big.Int).Set(orZero(tip))

	baseFee := orZero(data.BaseFee)
	headroom := new(big.Int).Mul(baseFee, big.NewInt(baseFeeHeadroom))
	floor := new(big.Int).Add(tip, headroom)

	maxFee := bigMax(bigMax(overrides.MaxFee, data.SuggestedCeiling), floor)
	maxFee = new(big.Int).Set(orZero(maxFee))

	gasLimit := overrides.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return FeeQuote{Tip: tip, MaxFee: maxFee, GasLimit: gasLimit}
}

// bigMax returns the larger of a and b, treating nil as absent.
func bigMax(a, b *big.Int) *big.Int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
