package mcp

// Test Plan for CallMetrics:
// - Record captures successes and failures per tool
// - A later success clears the last error
// - Snapshot is sorted by tool and independent of later calls
// - Concurrent Record calls are safe

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallMetrics_Record(t *testing.T) {
	t.Parallel()

	metrics := NewCallMetrics()
	metrics.Record("compress_java", 10*time.Millisecond, nil)
	metrics.Record("compress_java", 20*time.Millisecond, errors.New("parse failed"))

	snap := metrics.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "compress_java", snap[0].Tool)
	assert.Equal(t, int64(2), snap[0].Calls)
	assert.Equal(t, int64(1), snap[0].Failures)
	assert.Equal(t, 20*time.Millisecond, snap[0].LastDuration)
	assert.Equal(t, "parse failed", snap[0].LastError)
	assert.False(t, snap[0].LastCall.IsZero())

	metrics.Record("compress_java", time.Millisecond, nil)
	assert.Empty(t, metrics.Snapshot()[0].LastError, "success clears the last error")
}

func TestCallMetrics_SnapshotIsSortedAndStable(t *testing.T) {
	t.Parallel()

	metrics := NewCallMetrics()
	metrics.Record("digest_stats", time.Millisecond, nil)
	metrics.Record("compress_java", time.Millisecond, nil)

	snap := metrics.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "compress_java", snap[0].Tool)
	assert.Equal(t, "digest_stats", snap[1].Tool)

	metrics.Record("compress_java", time.Millisecond, nil)
	assert.Equal(t, int64(1), snap[0].Calls, "snapshot must not change after more calls")
}

func TestCallMetrics_Concurrent(t *testing.T) {
	t.Parallel()

	metrics := NewCallMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%5 == 0 {
				err = errors.New("boom")
			}
			metrics.Record("compress_java", time.Millisecond, err)
			_ = metrics.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := metrics.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(50), snap[0].Calls)
	assert.Equal(t, int64(10), snap[0].Failures)
}
