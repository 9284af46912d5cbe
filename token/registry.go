package token

import (
	"sync"
	"time"
)

// ConsumedTokenRegistry tracks single-use token ids so a refresh token can
// be redeemed exactly once. Consume must be an atomic check-and-mark.
type ConsumedTokenRegistry interface {
	// Consume marks jti as used. Returns false if it was already consumed.
	Consume(jti string, exp time.Time) bool
	Cleanup() // Remove expired entries
}

// InMemoryConsumedTokenRegistry is a simple in-memory implementation
type InMemoryConsumedTokenRegistry struct {
	consumed map[string]time.Time
	mu       sync.Mutex
}

func NewInMemoryConsumedTokenRegistry() ConsumedTokenRegistry {
	return &InMemoryConsumedTokenRegistry{
		consumed: make(map[string]time.Time),
	}
}

func (c *InMemoryConsumedTokenRegistry) Consume(jti string, exp time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.consumed[jti]; exists {
		return false
	}
	c.consumed[jti] = exp
	return true
}

func (c *InMemoryConsumedTokenRegistry) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for jti, exp := range c.consumed {
		if now.After(exp) {
			delete(c.consumed, jti)
		}
	}
}
