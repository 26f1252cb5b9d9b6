package request

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// ProviderBackoff manages exponential backoff per provider. Failures push
// the next allowed request out exponentially; successes walk the delay
// back down instead of clearing it outright, so a flaky provider is not
// hammered the moment it answers once.
type ProviderBackoff struct {
	mu        sync.RWMutex
	providers map[string]*backoffState
	baseDelay time.Duration
	maxDelay  time.Duration
}

type backoffState struct {
	failureCount int
	nextAllowed  time.Time
}

// NewProviderBackoff creates a new backoff manager.
func NewProviderBackoff(baseDelay, maxDelay time.Duration) *ProviderBackoff {
	return &ProviderBackoff{
		providers: make(map[string]*backoffState),
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

// Wait blocks until the provider is allowed to make a request.
func (b *ProviderBackoff) Wait(provider string) {
	b.mu.RLock()
	state, exists := b.providers[provider]
	b.mu.RUnlock()

	if !exists {
		return
	}

	if time.Now().Before(state.nextAllowed) {
		time.Sleep(time.Until(state.nextAllowed))
	}
}

// RecordFailure increases the backoff delay for a provider.
func (b *ProviderBackoff) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, exists := b.providers[provider]
	if !exists {
		state = &backoffState{}
		b.providers[provider] = state
	}

	state.failureCount++
	state.nextAllowed = time.Now().Add(b.delayFor(state.failureCount))
}

// RecordSuccess decreases the backoff delay (gradual recovery).
func (b *ProviderBackoff) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, exists := b.providers[provider]
	if !exists {
		return
	}

	if state.failureCount > 0 {
		state.failureCount--
	}
	if state.failureCount == 0 {
		state.nextAllowed = time.Time{}
	}
}

// delayFor returns the exponential delay with 10% jitter, capped.
func (b *ProviderBackoff) delayFor(failures int) time.Duration {
	delay := time.Duration(float64(b.baseDelay) * math.Pow(2, float64(failures-1)))
	if delay > b.maxDelay {
		delay = b.maxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(delay))
	return delay + jitter
}

// State returns the current backoff state for a provider.
func (b *ProviderBackoff) State(provider string) (failureCount int, nextAllowed time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if state, exists := b.providers[provider]; exists {
		return state.failureCount, state.nextAllowed
	}
	return 0, time.Time{}
}
