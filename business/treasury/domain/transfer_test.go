package domain

import (
	"math/big"
	"testing"
)

// milliEther converts whole milli-ether steps into wei using only integer
// math, e.g. milliEther(1000) = 1 ETH.
func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000))
}

func TestResolveAmount(t *testing.T) {
	// fee ceiling × gas limit = 0.0021 ether, safety reserve = 0.003 ether
	quote := FeeQuote{
		Tip:      gwei(5),
		MaxFee:   gwei(100),
		GasLimit: 21000, // 100 gwei × 21000 = 0.0021 ether
	}
	reserve := milliEther(3)

	tests := []struct {
		name    string
		amount  *big.Int
		balance *big.Int
		want    *big.Int
	}{
		{
			name:    "max_send_sweeps_affordable",
			amount:  big.NewInt(0),
			balance: milliEther(1000), // 1 ETH
			// 1 − 0.0021 − 0.003 = 0.9949 ETH
			want: new(big.Int).Sub(milliEther(1000), new(big.Int).Add(quote.Cost(), reserve)),
		},
		{
			name:    "nil_amount_means_max_send",
			amount:  nil,
			balance: milliEther(1000),
			want:    new(big.Int).Sub(milliEther(1000), new(big.Int).Add(quote.Cost(), reserve)),
		},
		{
			name:    "positive_amount_below_affordable",
			amount:  milliEther(100),
			balance: milliEther(1000),
			want:    milliEther(100),
		},
		{
			name:    "positive_amount_capped_at_affordable",
			amount:  milliEther(999),
			balance: milliEther(1000),
			want:    new(big.Int).Sub(milliEther(1000), new(big.Int).Add(quote.Cost(), reserve)),
		},
		{
			name:    "reserve_exceeds_balance_goes_negative",
			amount:  big.NewInt(0),
			balance: milliEther(1), // 0.001 ETH, reserve alone is 0.003
			want:    new(big.Int).Sub(milliEther(1), new(big.Int).Add(quote.Cost(), reserve)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := TransferRequest{Amount: tt.amount}
			got := ResolveAmount(req, tt.balance, quote, reserve)
			if got.Cmp(tt.want) != 0 {
				t.Errorf("resolved = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveAmount_ExactScenario(t *testing.T) {
	// balance 1.0, max-send, fees 0.0021, reserve 0.003 → 0.9949
	quote := FeeQuote{MaxFee: gwei(100), GasLimit: 21000}
	got := ResolveAmount(TransferRequest{}, milliEther(1000), quote, milliEther(3))

	want, _ := new(big.Int).SetString("994900000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Errorf("resolved = %s wei, want %s wei (0.9949 ether)", got, want)
	}
}

func TestTransferOutcome_Tags(t *testing.T) {
	confirmed := Confirmed([32]byte{1}, big.NewInt(5), nil)
	if !confirmed.Succeeded() || !confirmed.LeftProcess() {
		t.Error("confirmed outcome must be succeeded and submitted")
	}

	local := Failed(nil)
	if local.Succeeded() || local.LeftProcess() {
		t.Error("local failure must carry no hash")
	}

	reverted := FailedOnChain([32]byte{2}, nil, nil)
	if reverted.Succeeded() || !reverted.LeftProcess() {
		t.Error("on-chain failure must carry its hash")
	}
}
