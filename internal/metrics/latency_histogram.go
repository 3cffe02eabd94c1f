package metrics

import (
	"sync/atomic"
	"time"
)

// bucketBounds are the upper bounds of the histogram buckets; the last
// bucket holds everything slower.
var bucketBounds = [...]time.Duration{
	time.Second,
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
	time.Minute,
	2 * time.Minute,
	5 * time.Minute,
}

type LatencyHistogram struct {
	buckets [len(bucketBounds) + 1]uint64
	min     uint64
	max     uint64
	count   uint64
	sum     uint64
}

func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{}
}

func (lh *LatencyHistogram) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	ns := uint64(d)
	atomic.AddUint64(&lh.count, 1)
	atomic.AddUint64(&lh.sum, ns)

	for {
		oldMin := atomic.LoadUint64(&lh.min)
		if ns >= oldMin && oldMin != 0 {
			break
		}
		if atomic.CompareAndSwapUint64(&lh.min, oldMin, ns) {
			break
		}
	}

	for {
		oldMax := atomic.LoadUint64(&lh.max)
		if ns <= oldMax {
			break
		}
		if atomic.CompareAndSwapUint64(&lh.max, oldMax, ns) {
			break
		}
	}

	atomic.AddUint64(&lh.buckets[bucketIndex(d)], 1)
}

func bucketIndex(d time.Duration) int {
	for i, bound := range bucketBounds {
		if d < bound {
			return i
		}
	}
	return len(bucketBounds)
}

func (lh *LatencyHistogram) GetStats() LatencyStats {
	count := atomic.LoadUint64(&lh.count)
	sum := atomic.LoadUint64(&lh.sum)

	avg := uint64(0)
	if count > 0 {
		avg = sum / count
	}

	stats := LatencyStats{
		Min:   time.Duration(atomic.LoadUint64(&lh.min)),
		Max:   time.Duration(atomic.LoadUint64(&lh.max)),
		Avg:   time.Duration(avg),
		Count: count,
	}
	for i := range lh.buckets {
		stats.Buckets[i] = atomic.LoadUint64(&lh.buckets[i])
	}
	return stats
}

type LatencyStats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Count   uint64
	Buckets [len(bucketBounds) + 1]uint64
}
