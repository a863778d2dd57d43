package approval

import (
	"context"
	"testing"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
)

func TestProbabilisticApprover_Deterministic(t *testing.T) {
	const draws = 50

	a := NewProbabilisticApprover(0.3, 1)
	b := NewProbabilisticApprover(0.3, 1)

	for i := 0; i < draws; i++ {
		gotA, _ := a.Approve(context.Background(), app.Request{})
		gotB, _ := b.Approve(context.Background(), app.Request{})
		if gotA != gotB {
			t.Fatalf("draw %d diverged between identically seeded approvers", i)
		}
	}
}

func TestProbabilisticApprover_Extremes(t *testing.T) {
	always := NewProbabilisticApprover(0, 1)
	for i := 0; i < 20; i++ {
		if ok, _ := always.Approve(context.Background(), app.Request{}); !ok {
			t.Fatal("zero decline probability must always approve")
		}
	}

	// Float64 draws in [0, 1), so a probability of 1 declines every request.
	never := NewProbabilisticApprover(1, 1)
	for i := 0; i < 20; i++ {
		if ok, _ := never.Approve(context.Background(), app.Request{}); ok {
			t.Fatal("full decline probability must never approve")
		}
	}
}
