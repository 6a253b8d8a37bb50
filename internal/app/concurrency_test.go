package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelPartial_CollectsEveryOutcome(t *testing.T) {
	boom := errors.New("boom")

	results := ParallelPartial(context.Background(), 0,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 3, nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, 3, results[2].Value)
}

func TestParallelPartial_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32

	fn := func(context.Context) (struct{}, error) {
		n := running.Add(1)
		defer running.Add(-1)

		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)

		return struct{}{}, nil
	}

	ParallelPartial(context.Background(), 2, fn, fn, fn, fn, fn)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParallelPartial_NoFuncs(t *testing.T) {
	assert.Empty(t, ParallelPartial[int](context.Background(), 0))
}
