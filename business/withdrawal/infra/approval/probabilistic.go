// Package approval provides Approver implementations for the gated variant.
package approval

import (
	"context"
	"math/rand"
	"sync"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
)

// ProbabilisticApprover declines a fixed fraction of requests. The source
// is explicitly seeded so tests can pin the decision sequence.
type ProbabilisticApprover struct {
	declineProbability float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProbabilisticApprover creates an approver declining with the given
// probability in [0, 1].
func NewProbabilisticApprover(declineProbability float64, seed int64) *ProbabilisticApprover {
	return &ProbabilisticApprover{
		declineProbability: declineProbability,
		rng:                rand.New(rand.NewSource(seed)),
	}
}

// Approve draws one decision.
func (a *ProbabilisticApprover) Approve(_ context.Context, _ app.Request) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64() >= a.declineProbability, nil
}
