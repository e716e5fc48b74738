package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// clock is a manually advanced time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(settings Settings) (*Breaker, *clock) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	b := New("test", settings)
	b.now = c.now
	return b, c
}

func outcome(ok bool) func() error {
	return func() error {
		if ok {
			return nil
		}
		return errBoom
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []bool
		expected State
	}{
		{"stays closed on successes", []bool{true, true, true}, StateClosed},
		{"opens after threshold failures", []bool{false, false, false}, StateOpen},
		{"success resets the failure count", []bool{false, false, true, false, false}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBreaker(Settings{Threshold: 3, Cooldown: time.Minute})
			for _, ok := range tt.calls {
				_ = b.Do(outcome(ok))
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestOpenBreakerSkipsCalls(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})
	require.ErrorIs(t, b.Do(outcome(false)), errBoom)

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestHalfOpenProbe(t *testing.T) {
	b, c := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})
	_ = b.Do(outcome(false))

	c.advance(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	require.ErrorIs(t, b.Do(outcome(false)), errBoom)
	assert.Equal(t, StateOpen, b.State())

	c.advance(time.Minute)
	require.NoError(t, b.Do(outcome(true)))
	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenAdmitsOneProbe(t *testing.T) {
	b, c := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Second})
	_ = b.Do(outcome(false))
	c.advance(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, b.Do(outcome(true)), ErrOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestStateChangeCallback(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(Settings{
		Threshold: 2,
		Cooldown:  time.Second,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = b.Do(outcome(false))
	_ = b.Do(outcome(false))
	c.advance(time.Second)
	_ = b.Do(outcome(true))

	assert.Equal(t, []string{"closed->open", "half-open->closed"}, transitions)
}

func TestPanicCountsAsFailure(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})

	assert.Panics(t, func() {
		_ = b.Do(func() error { panic("kaboom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestConcurrentCalls(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 1000, Cooldown: time.Minute})

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.Do(func() error {
				ran.Add(1)
				if i%2 == 0 {
					return errBoom
				}
				return nil
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), ran.Load())
	assert.Equal(t, StateClosed, b.State())
}

func TestDefaults(t *testing.T) {
	b := New("lsblk", Settings{})
	assert.Equal(t, "lsblk", b.Name())
	assert.Equal(t, 3, b.settings.Threshold)
	assert.Equal(t, 30*time.Second, b.settings.Cooldown)
	assert.Equal(t, "unknown", State(42).String())
}
