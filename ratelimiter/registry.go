package ratelimiter

import (
	"fmt"
	"sync"
)

// RateLimiterRegistry manages rate limiters for different models.
type RateLimiterRegistry interface {
	Get(model string) (Limiter, error)
	Lookup(model string) (Limiter, bool)
	Set(model string, limiter Limiter)
}

type rateLimiterMapRegistry struct {
	registry map[string]Limiter
	mu       sync.RWMutex
}

// NewRateLimiterRegistry creates a new in-memory rate limiter registry.
func NewRateLimiterRegistry() RateLimiterRegistry {
	return &rateLimiterMapRegistry{
		registry: make(map[string]Limiter),
	}
}

func (r *rateLimiterMapRegistry) Get(model string) (Limiter, error) {
	limiter, ok := r.Lookup(model)
	if !ok {
		return nil, fmt.Errorf("rate limiter not found for model: %s", model)
	}
	return limiter, nil
}

// Lookup returns the limiter for model, or false when the model is unlimited.
func (r *rateLimiterMapRegistry) Lookup(model string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limiter, ok := r.registry[model]
	return limiter, ok
}

// Set registers limiter for model. A nil limiter removes the entry.
func (r *rateLimiterMapRegistry) Set(model string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter == nil {
		delete(r.registry, model)
		return
	}
	r.registry[model] = limiter
}
