package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu      sync.Mutex
	due     int
	calls   int
	failure error
}

func (f *fakeLedger) CompleteDue(_ context.Context, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failure != nil {
		return 0, f.failure
	}
	n := f.due
	if n > limit {
		n = limit
	}
	f.due -= n
	return n, nil
}

func (f *fakeLedger) snapshot() (due, calls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.due, f.calls
}

func TestCompleterDrainsBacklogOnStart(t *testing.T) {
	l := &fakeLedger{due: 2*completeBatch + 5}
	c := NewCompleter(l, time.Hour, nil)
	c.Start(context.Background())

	require.Eventually(t, func() bool {
		due, _ := l.snapshot()
		return due == 0
	}, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()

	_, calls := l.snapshot()
	assert.Equal(t, 3, calls)
}

func TestCompleterTicksUntilCancelled(t *testing.T) {
	l := &fakeLedger{failure: errors.New("db down")}
	c := NewCompleter(l, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	require.Eventually(t, func() bool {
		_, calls := l.snapshot()
		return calls >= 3
	}, time.Second, 5*time.Millisecond)
	cancel()
	c.Stop()
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "dev"} {
		logger, err := NewLogger(env)
		require.NoError(t, err)
		logger.Info("hello")
	}
}
