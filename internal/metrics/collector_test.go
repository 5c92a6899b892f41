package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRecord(t *testing.T) {
	c := NewCollector()

	c.Record(OpEmbed, 10*time.Millisecond, nil)
	c.Record(OpEmbed, 30*time.Millisecond, nil)
	c.Record(OpEmbed, 20*time.Millisecond, errors.New("boom"))

	snap := c.GetSnapshot()
	op, ok := snap.Operations[OpEmbed]
	if !ok {
		t.Fatal("expected embed operation in snapshot")
	}
	assert.Equal(t, int64(3), op.Count)
	assert.Equal(t, int64(1), op.Errors)
	assert.Equal(t, int64(10), op.MinTimeMs)
	assert.Equal(t, int64(30), op.MaxTimeMs)
	assert.Equal(t, float64(20), op.AvgTimeMs)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, float64(0))
}

func TestCollectorEmptySnapshot(t *testing.T) {
	c := NewCollector()
	snap := c.GetSnapshot()
	assert.Empty(t, snap.Operations, "untouched operations must not appear")
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(OpStoreWrite, time.Millisecond, nil)
				_ = c.GetSnapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), c.GetSnapshot().Operations[OpStoreWrite].Count)
}
