package domain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	treasury "github.com/fd1az/treasury-bot/business/treasury/domain"
)

func TestResult_Succeeded(t *testing.T) {
	if NewResult(VariantDirect).Succeeded() {
		t.Error("a result with no legs must not count as succeeded")
	}

	ok := NewResult(VariantSplit,
		treasury.Confirmed(common.Hash{1}, big.NewInt(10), nil),
		treasury.Confirmed(common.Hash{2}, big.NewInt(10), nil),
	)
	if !ok.Succeeded() {
		t.Error("all-confirmed legs must succeed")
	}

	mixed := NewResult(VariantSplit,
		treasury.Confirmed(common.Hash{1}, big.NewInt(10), nil),
		treasury.Failed(errors.New("rejected")),
	)
	if mixed.Succeeded() {
		t.Error("any failed leg must fail the result")
	}
}

func TestResult_TotalSent(t *testing.T) {
	r := NewResult(VariantSplit,
		treasury.Confirmed(common.Hash{1}, big.NewInt(300), nil),
		treasury.Confirmed(common.Hash{2}, big.NewInt(200), nil),
		treasury.Failed(errors.New("rejected")),
	)
	if got := r.TotalSent(); got.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("total sent = %s, want 500 (confirmed legs only)", got)
	}
}

func TestResult_FirstHashAndError(t *testing.T) {
	boom := errors.New("reverted")
	r := NewResult(VariantAudited,
		treasury.Failed(errors.New("local abort")),
		treasury.FailedOnChain(common.Hash{7}, nil, boom),
	)

	if got := r.FirstHash(); got != (common.Hash{7}) {
		t.Errorf("first hash = %s, want the first submitted leg's hash", got.Hex())
	}
	if got := r.FirstError(); got == nil || got.Error() != "local abort" {
		t.Errorf("first error = %v, want the first leg's error", got)
	}
}
