package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyHistogram(t *testing.T) {
	lh := NewLatencyHistogram()
	lh.Record(500 * time.Millisecond)
	lh.Record(3 * time.Second)
	lh.Record(10 * time.Minute)

	stats := lh.GetStats()
	assert.Equal(t, uint64(3), stats.Count)
	assert.Equal(t, 500*time.Millisecond, stats.Min)
	assert.Equal(t, 10*time.Minute, stats.Max)
	assert.Equal(t, (500*time.Millisecond+3*time.Second+10*time.Minute)/3, stats.Avg)
	assert.Equal(t, uint64(1), stats.Buckets[0])
	assert.Equal(t, uint64(1), stats.Buckets[1])
	assert.Equal(t, uint64(1), stats.Buckets[len(bucketBounds)])
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{999 * time.Millisecond, 0},
		{time.Second, 1},
		{20 * time.Second, 3},
		{90 * time.Second, 5},
		{time.Hour, len(bucketBounds)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketIndex(tt.d), tt.d.String())
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.RecordBuild(time.Second, i%2 == 0)
			r.RecordDesign(time.Second, nil)
		}(i)
	}
	wg.Wait()
	r.RecordDesign(0, errors.New("gateway down"))
	r.RecordImport()
	r.RecordExport()
	r.RecordReset()

	s := r.Snapshot()
	assert.Equal(t, uint64(25), s.Builds)
	assert.Equal(t, uint64(25), s.Reapplies)
	assert.Equal(t, uint64(50), s.Designs)
	assert.Equal(t, uint64(1), s.DesignFailures)
	assert.Equal(t, uint64(50), s.BuildLatency.Count)
	assert.Contains(t, s.Export(), "builds 25\n")
	assert.Contains(t, s.Export(), "design_failures 1\n")
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.RecordBuild(time.Second, false)
	r.RecordDesign(time.Second, nil)
	r.RecordImport()
	assert.Equal(t, Snapshot{}, r.Snapshot())
}
