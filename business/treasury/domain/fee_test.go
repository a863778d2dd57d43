package domain

import (
	"math/big"
	"testing"
)

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func TestComputeQuote_Tip(t *testing.T) {
	minTip := gwei(5)

	tests := []struct {
		name      string
		overrides FeeOverrides
		data      FeeData
		wantTip   *big.Int
	}{
		{
			name:    "suggested_above_floor",
			data:    FeeData{SuggestedTip: gwei(8), BaseFee: gwei(20)},
			wantTip: gwei(8),
		},
		{
			name:    "floor_applied_when_network_undersuggests",
			data:    FeeData{SuggestedTip: gwei(1), BaseFee: gwei(20)},
			wantTip: gwei(5),
		},
		{
			name:      "override_wins_over_floor",
			overrides: FeeOverrides{Tip: gwei(100)},
			data:      FeeData{SuggestedTip: gwei(2), BaseFee: gwei(20)},
			wantTip:   gwei(100),
		},
		{
			name:      "zero_override_passes_through",
			overrides: FeeOverrides{Tip: big.NewInt(0)},
			data:      FeeData{SuggestedTip: gwei(8), BaseFee: gwei(20)},
			wantTip:   big.NewInt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := ComputeQuote(tt.overrides, tt.data, minTip, 21000)
			if quote.Tip.Cmp(tt.wantTip) != 0 {
				t.Errorf("tip = %s, want %s", quote.Tip, tt.wantTip)
			}
		})
	}
}

func TestComputeQuote_CeilingHeadroom(t *testing.T) {
	minTip := gwei(5)

	tests := []struct {
		name      string
		overrides FeeOverrides
		data      FeeData
	}{
		{
			name: "normal_base_fee",
			data: FeeData{SuggestedTip: gwei(2), SuggestedCeiling: gwei(50), BaseFee: gwei(30)},
		},
		{
			name: "zero_base_fee",
			data: FeeData{SuggestedTip: gwei(2), SuggestedCeiling: gwei(2), BaseFee: big.NewInt(0)},
		},
		{
			name: "nil_base_fee_pre_1559",
			data: FeeData{SuggestedTip: gwei(2)},
		},
		{
			name: "spiking_base_fee",
			data: FeeData{SuggestedTip: gwei(2), SuggestedCeiling: gwei(100), BaseFee: gwei(400)},
		},
		{
			name:      "low_override_never_lowers_ceiling",
			overrides: FeeOverrides{MaxFee: gwei(1)},
			data:      FeeData{SuggestedTip: gwei(2), SuggestedCeiling: gwei(50), BaseFee: gwei(30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := ComputeQuote(tt.overrides, tt.data, minTip, 21000)

			baseFee := tt.data.BaseFee
			if baseFee == nil {
				baseFee = big.NewInt(0)
			}
			floor := new(big.Int).Add(quote.Tip,
				new(big.Int).Mul(baseFee, big.NewInt(3)))

			if quote.MaxFee.Cmp(floor) < 0 {
				t.Errorf("ceiling %s below tip + 3×baseFee %s", quote.MaxFee, floor)
			}
			if quote.MaxFee.Cmp(quote.Tip) < 0 {
				t.Errorf("ceiling %s below tip %s", quote.MaxFee, quote.Tip)
			}
		})
	}
}

func TestComputeQuote_GasLimit(t *testing.T) {
	data := FeeData{SuggestedTip: gwei(2), BaseFee: gwei(10)}

	quote := ComputeQuote(FeeOverrides{}, data, gwei(5), 21000)
	if quote.GasLimit != 21000 {
		t.Errorf("default gas limit = %d, want 21000", quote.GasLimit)
	}

	quote = ComputeQuote(FeeOverrides{GasLimit: 50000}, data, gwei(5), 21000)
	if quote.GasLimit != 50000 {
		t.Errorf("overridden gas limit = %d, want 50000", quote.GasLimit)
	}
}

func TestFeeQuote_Cost(t *testing.T) {
	quote := FeeQuote{Tip: gwei(5), MaxFee: gwei(100), GasLimit: 21000}

	want := new(big.Int).Mul(gwei(100), big.NewInt(21000))
	if got := quote.Cost(); got.Cmp(want) != 0 {
		t.Errorf("cost = %s, want %s", got, want)
	}
}
