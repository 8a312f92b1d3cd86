package processor

import (
	"math/rand"
	"sync"
	"time"

	"payment-settlement-go/internal/models"
)

// OutcomePolicy decides the terminal outcome for a pending transaction.
// The default implementation simulates a settlement network; a real rail
// integration replaces the policy without touching the sweep.
type OutcomePolicy interface {
	Decide(transaction models.Transaction) (status string, message string)
}

// WeightedOutcomePolicy resolves transactions randomly with a fixed
// success rate.
type WeightedOutcomePolicy struct {
	successRate float64

	// rand.Rand is not safe for concurrent use; the sweep resolves
	// transactions from multiple goroutines.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewWeightedOutcomePolicy creates a policy with the given success rate.
// A nil rng gets a time-seeded source; tests pass a fixed seed.
func NewWeightedOutcomePolicy(successRate float64, rng *rand.Rand) *WeightedOutcomePolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &WeightedOutcomePolicy{successRate: successRate, rng: rng}
}

func (p *WeightedOutcomePolicy) Decide(models.Transaction) (string, string) {
	p.mu.Lock()
	draw := p.rng.Float64()
	p.mu.Unlock()

	if draw < p.successRate {
		return models.TransactionSuccess, "Transaction processed successfully"
	}
	return models.TransactionFailed, "Transaction declined by settlement simulation"
}
