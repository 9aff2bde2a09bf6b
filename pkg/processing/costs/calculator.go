package costs

import (
	"sync"
)

// DefaultCostPer1KTokens is the fallback rate when none is configured.
const DefaultCostPer1KTokens = 0.002

// Calculator converts token counts to USD using a per-1K-token rate.
// It is thread-safe and supports hot-reload of the rate.
type Calculator struct {
	costPer1K float64
	mu        sync.RWMutex
}

// NewCalculator creates a calculator with the given per-1K-token rate.
// A non-positive rate falls back to DefaultCostPer1KTokens.
func NewCalculator(costPer1KTokens float64) *Calculator {
	if costPer1KTokens <= 0 {
		costPer1KTokens = DefaultCostPer1KTokens
	}
	return &Calculator{costPer1K: costPer1KTokens}
}

// Cost returns the USD cost of the given token count.
func (c *Calculator) Cost(tokens int) float64 {
	if tokens <= 0 {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return float64(tokens) / 1000.0 * c.costPer1K
}

// Rate returns the current per-1K-token rate.
func (c *Calculator) Rate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.costPer1K
}

// SetRate updates the per-1K-token rate. Used by config hot reload.
// Non-positive rates are ignored.
func (c *Calculator) SetRate(costPer1KTokens float64) {
	if costPer1KTokens <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.costPer1K = costPer1KTokens
}
