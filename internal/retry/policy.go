package retry

import (
	"time"

	"scribe/internal/ocr"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Policy configures how failed attempts are retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff.
	BaseDelay time.Duration
	// MaxDelay caps every computed delay, hints included.
	MaxDelay time.Duration
}

// Default returns the policy used when configuration supplies nothing: three
// total attempts, one second base delay, thirty second cap.
func Default() Policy {
	return Policy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
	}
}

// Decision is the outcome of consulting the policy after a failed attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// GiveUp is the terminal decision.
var GiveUp = Decision{}

// Decide returns what to do after the given 1-based attempt failed with err.
func (p Policy) Decide(err *ocr.Error, attempt int) Decision {
	if err == nil || !err.Retryable {
		return GiveUp
	}
	if attempt >= p.maxAttempts() {
		return GiveUp
	}

	delay := p.backoffDelay(attempt)
	if err.Kind == ocr.KindRateLimited && err.RetryAfter > delay {
		delay = p.capDelay(err.RetryAfter)
	}
	return Decision{Retry: true, Delay: delay}
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return defaultMaxAttempts
	}
	return p.MaxAttempts
}

// backoffDelay doubles per attempt: attempt 1 waits base, attempt 2 waits
// 2*base, and so on, capped at MaxDelay.
func (p Policy) backoffDelay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	maxDelay := p.maxDelay()

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	return p.capDelay(delay)
}

func (p Policy) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := p.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (p Policy) maxDelay() time.Duration {
	if p.MaxDelay <= 0 {
		return defaultMaxDelay
	}
	return p.MaxDelay
}
