package util

import "time"

// Stopwatch measures elapsed wall time using the monotonic clock.
type Stopwatch struct {
	start time.Time
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Seconds returns the elapsed time rounded to two decimals.
func (s *Stopwatch) Seconds() float64 {
	ms := s.Elapsed().Milliseconds()
	return float64(ms/10) / 100
}

func (s *Stopwatch) Reset() {
	s.start = time.Now()
}
