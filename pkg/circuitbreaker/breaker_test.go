package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		cfg      Config
		wantNil  bool
		wantName string
	}{
		{
			name:     "creates circuit breaker when enabled",
			cfg:      Config{Name: "count-cache", Enabled: true, MaxRequests: 5, Interval: time.Minute, Timeout: 30 * time.Second, FailureThreshold: 5},
			wantName: "count-cache",
		},
		{
			name:    "returns nil when disabled",
			cfg:     Config{Name: "disabled", Enabled: false},
			wantNil: true,
		},
		{
			name:     "zero threshold still trips",
			cfg:      Config{Name: "zero-threshold", Enabled: true},
			wantName: "zero-threshold",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := New[int64](tc.cfg)

			if tc.wantNil {
				require.Nil(t, cb)
				require.Equal(t, StateClosed, cb.State())

				return
			}

			require.NotNil(t, cb)
			require.Equal(t, tc.wantName, cb.Name())
			require.Equal(t, StateClosed, cb.State())
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	enabled := Config{Name: "exec", Enabled: true, MaxRequests: 5, Interval: time.Minute, Timeout: 30 * time.Second, FailureThreshold: 5}

	cases := []struct {
		name      string
		cb        *CircuitBreaker[int64]
		fn        func() (int64, error)
		wantVal   int64
		errSubstr string
	}{
		{
			name:    "executes through the breaker",
			cb:      New[int64](enabled),
			fn:      func() (int64, error) { return 10, nil },
			wantVal: 10,
		},
		{
			name:    "nil breaker passes through",
			fn:      func() (int64, error) { return 3, nil },
			wantVal: 3,
		},
		{
			name:      "returns the call error",
			cb:        New[int64](enabled),
			fn:        func() (int64, error) { return 0, errors.New("redis: connection refused") },
			errSubstr: "connection refused",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := Execute(tc.cb, tc.fn)

			if tc.errSubstr != "" {
				require.ErrorContains(t, err, tc.errSubstr)
				require.False(t, IsRejection(err))

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantVal, result)
		})
	}
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		transitions []State
	)

	cb := New[string](Config{
		Name:             "transitions",
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1,
		OnStateChange: func(_ string, _, to State) {
			mu.Lock()
			defer mu.Unlock()

			transitions = append(transitions, to)
		},
	})

	_, err := Execute(cb, func() (string, error) { return "", errors.New("failure") })
	require.Error(t, err)
	require.Equal(t, StateOpen, cb.State())

	_, err = Execute(cb, func() (string, error) { return "unreachable", nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.True(t, IsRejection(err))

	time.Sleep(150 * time.Millisecond)

	result, err := Execute(cb, func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	require.Equal(t, "recovered", result)
	require.Equal(t, StateClosed, cb.State())

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_TooManyRequests(t *testing.T) {
	t.Parallel()

	cb := New[string](Config{
		Name:             "half-open",
		Enabled:          true,
		MaxRequests:      1,
		Interval:         100 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1,
	})

	_, _ = Execute(cb, func() (string, error) { return "", errors.New("failure") })

	time.Sleep(150 * time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		close(started)
		_, _ = Execute(cb, func() (string, error) {
			time.Sleep(50 * time.Millisecond)

			return "slow", nil
		})
		close(done)
	}()

	<-started
	time.Sleep(10 * time.Millisecond)

	_, err := Execute(cb, func() (string, error) { return "rejected", nil })
	require.ErrorIs(t, err, ErrTooManyRequests)

	<-done
}
