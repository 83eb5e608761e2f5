package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(minInit, maxInit, limit int) Config {
	cfg := DefaultConfig()
	cfg.MinInit = minInit
	cfg.MaxInit = maxInit
	cfg.Limit = limit
	cfg.RollingLimit = true
	cfg.Verify = true
	cfg.Workers = 4
	return cfg
}

// collect runs a search and returns every reported solution.
func collect(t *testing.T, cr *Cruncher) []Solution {
	t.Helper()
	var (
		mu   sync.Mutex
		sols []Solution
	)
	err := cr.Run(t.Context(), func(sol Solution) error {
		mu.Lock()
		defer mu.Unlock()
		sols = append(sols, sol)
		return nil
	})
	require.NoError(t, err)
	return sols
}

func verifySolution(t *testing.T, goal []byte, sol Solution) {
	t.Helper()
	require.Len(t, sol.Program, sol.Length)
	require.Equal(t, sol.Shape.String(), sol.Prefix)
	require.Equal(t, sol.Shape.Len()+sol.Plan.Cost, sol.Length)
	m, err := Execute(sol.Program, verifySteps)
	require.NoError(t, err, sol.Program)
	require.Equal(t, goal, m.Output(), sol.Program)
}

func TestCrunchRollingFindsShortest(t *testing.T) {
	tests := []struct {
		text             string
		minInit, maxInit int
		want             int
	}{
		{"hi", 14, 18, 23},
		{"ab", 14, 16, 24},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			goal := []byte(tt.text)
			cr, err := NewCruncher(smallConfig(tt.minInit, tt.maxInit, 60), goal)
			require.NoError(t, err)

			sols := collect(t, cr)
			require.NotEmpty(t, sols)
			for i, sol := range sols {
				verifySolution(t, goal, sol)
				if i > 0 {
					require.Less(t, sol.Length, sols[i-1].Length, "reports must strictly improve")
				}
			}
			assert.Equal(t, tt.want, sols[len(sols)-1].Length)
			assert.Equal(t, tt.want, cr.Bound().Load())
		})
	}
}

func TestCrunchFixedLimitReportsAll(t *testing.T) {
	goal := []byte("hi")
	cfg := smallConfig(14, 18, 25)
	cfg.RollingLimit = false
	cr, err := NewCruncher(cfg, goal)
	require.NoError(t, err)

	sols := collect(t, cr)
	require.NotEmpty(t, sols)
	best := sols[0].Length
	for _, sol := range sols {
		assert.LessOrEqual(t, sol.Length, 25)
		best = min(best, sol.Length)
	}
	assert.Equal(t, 23, best)
	assert.Equal(t, 26, cr.Bound().Load(), "a fixed limit never moves")
}

func TestCrunchTailLoops(t *testing.T) {
	goal := []byte("hi")
	cfg := smallConfig(14, 17, 60)
	cfg.TailLoops = true
	cr, err := NewCruncher(cfg, goal)
	require.NoError(t, err)

	sols := collect(t, cr)
	require.NotEmpty(t, sols)
	checkReports(t, goal, 60, sols)
	// walking alone reaches 25 by length 17; more moves can only help
	assert.LessOrEqual(t, sols[len(sols)-1].Length, 25)
}

func TestCrunchBoundAlreadyReached(t *testing.T) {
	// 14-symbol prefixes plus at least 3 symbols for "hi" exceed 15
	cr, err := NewCruncher(smallConfig(14, 0, 15), []byte("hi"))
	require.NoError(t, err)
	assert.Empty(t, collect(t, cr))
}

func TestNewCruncherDefaultsLimit(t *testing.T) {
	cfg := smallConfig(14, 16, 0)
	cfg.RollingLimit = false
	cr, err := NewCruncher(cfg, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 57, cr.Config().Limit)
	assert.True(t, cr.Config().RollingLimit)
	assert.Equal(t, 58, cr.Bound().Load())
}

func TestNewCruncherRejectsBadConfig(t *testing.T) {
	cfg := smallConfig(20, 15, 60)
	_, err := NewCruncher(cfg, []byte("hi"))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCruncher(DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCrunchCancelled(t *testing.T) {
	cr, err := NewCruncher(smallConfig(14, 0, 200), []byte("hello world"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = cr.Run(ctx, func(Solution) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrunchReportErrorStops(t *testing.T) {
	cfg := smallConfig(14, 18, 60)
	cfg.Workers = 1
	cr, err := NewCruncher(cfg, []byte("hi"))
	require.NoError(t, err)

	stop := errors.New("enough")
	calls := 0
	err = cr.Run(t.Context(), func(Solution) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestCrunchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cr, err := NewCruncher(smallConfig(14, 16, 60), []byte("hi"), WithMetrics(m))
	require.NoError(t, err)

	sols := collect(t, cr)
	require.NotEmpty(t, sols)
	assert.Equal(t, float64(len(sols)), testutil.ToFloat64(m.solutions))
	assert.Equal(t, float64(sols[len(sols)-1].Length), testutil.ToFloat64(m.best))
	assert.Equal(t, float64(16), testutil.ToFloat64(m.initLen))

	simulated := 0.0
	for _, term := range []Termination{Halted, Cycle, LoopLimit, TapeLimit, Diverged} {
		simulated += testutil.ToFloat64(m.shapes.WithLabelValues(term.String()))
	}
	assert.Equal(t, float64(4+44+264), simulated)
}
