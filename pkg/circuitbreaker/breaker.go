package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

// State mirrors the breaker state without leaking gobreaker to callers.
type State string

const (
	StateClosed   State = "closed"
	StateHalfOpen State = "half-open"
	StateOpen     State = "open"
)

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New returns nil when the breaker is disabled; Execute treats a nil breaker
// as a pass-through.
func New[T any](cfg Config) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, toState(from), toState(to))
		}
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State returns closed for a nil breaker.
func (c *CircuitBreaker[T]) State() State {
	if c == nil {
		return StateClosed
	}

	return toState(c.cb.State())
}

// Execute runs fn through the breaker, translating gobreaker rejections into
// ErrCircuitOpen and ErrTooManyRequests.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T

		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T

		return zero, ErrTooManyRequests
	}

	return result, err
}

func toState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
