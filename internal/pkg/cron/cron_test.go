package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakePruner struct {
	mu     sync.Mutex
	calls  []time.Time
	result int64
	err    error
}

func (f *fakePruner) PruneMatchCache(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, before)
	return f.result, f.err
}

func TestService_DisabledWithoutTTL(t *testing.T) {
	s := NewService(&fakePruner{}, 0, "@hourly", nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 0, s.Entries())
}

func TestService_InvalidSpec(t *testing.T) {
	s := NewService(&fakePruner{}, time.Hour, "not a spec", nil)
	assert.Error(t, s.Start())
}

func TestService_Schedules(t *testing.T) {
	s := NewService(&fakePruner{}, time.Hour, "@every 1h", nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 1, s.Entries())
}

func TestService_PruneMatchCache(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	pruner := &fakePruner{result: 3}
	s := NewService(pruner, 24*time.Hour, "@hourly", zap.New(core))

	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneMatchCache()

	require.Len(t, pruner.calls, 1)
	assert.Equal(t, now.Add(-24*time.Hour), pruner.calls[0])
	assert.Equal(t, 1, logs.FilterMessage("match cache pruned").Len())
}

func TestService_PruneMatchCache_Error(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewService(&fakePruner{err: errors.New("db down")}, time.Hour, "@hourly", zap.New(core))

	s.pruneMatchCache()

	assert.Equal(t, 1, logs.FilterMessage("failed to prune match cache").Len())
}
