package poller_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"go-studybuddy-backend/pkg/poller"

	"github.com/stretchr/testify/assert"
)

func TestPollerRunsAndStops(t *testing.T) {
	var runs atomic.Int32

	p := poller.New("test", 10*time.Millisecond, slog.Default(), func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	p.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	p.Stop()

	got := runs.Load()
	assert.GreaterOrEqual(t, got, int32(2))

	// No further runs after Stop.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, runs.Load())
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	var runs atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	p := poller.New("test", 10*time.Millisecond, slog.Default(), func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom") // errors are logged, loop keeps going
	})

	p.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	got := runs.Load()
	assert.GreaterOrEqual(t, got, int32(1))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, runs.Load())
}

func TestStopWithoutStart(t *testing.T) {
	p := poller.New("idle", time.Second, slog.Default(), func(ctx context.Context) error { return nil })
	assert.NotPanics(t, func() { p.Stop() })
}
