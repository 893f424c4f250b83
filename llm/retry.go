package llm

import (
	"errors"
	"time"
)

// RetryStrategy decides whether and when a failed attempt is retried.
type RetryStrategy interface {
	// ShouldRetry determines if a retry should be attempted.
	ShouldRetry(err error) bool

	// NextDelay returns the delay before the next retry.
	NextDelay() time.Duration

	// Reset resets the retry state.
	Reset()
}

// DefaultRetryStrategy implements exponential backoff over retryable errors.
type DefaultRetryStrategy struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	attempts    int
}

// NewDefaultRetryStrategy doubles the wait from initialWait up to a minute.
func NewDefaultRetryStrategy(maxRetries int, initialWait time.Duration) *DefaultRetryStrategy {
	return &DefaultRetryStrategy{
		MaxRetries:  maxRetries,
		InitialWait: initialWait,
		MaxWait:     time.Minute,
	}
}

func (s *DefaultRetryStrategy) ShouldRetry(err error) bool {
	if err == nil || s.attempts >= s.MaxRetries {
		return false
	}
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Retryable()
	}
	return true
}

const maxShiftAmount = 30 // Cap at 2^30 to prevent overflow

func (s *DefaultRetryStrategy) NextDelay() time.Duration {
	s.attempts++
	shiftAmount := min(s.attempts-1, maxShiftAmount)
	delay := s.InitialWait * time.Duration(1<<shiftAmount)
	if s.MaxWait > 0 && delay > s.MaxWait {
		delay = s.MaxWait
	}
	return delay
}

func (s *DefaultRetryStrategy) Reset() {
	s.attempts = 0
}
