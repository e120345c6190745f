package history

import (
	"context"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are tracked in microseconds from 1us to 60s.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
	sigFigs      = 3
)

// Stats summarizes the latency of recorded requests. Only requests that
// received a response contribute to the latency figures.
type Stats struct {
	Count  int64         `json:"count"`
	Errors int64         `json:"errors"`
	Min    time.Duration `json:"min"`
	Mean   time.Duration `json:"mean"`
	P50    time.Duration `json:"p50"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Max    time.Duration `json:"max"`
}

// ErrorRate is the share of failed requests, 0 when nothing was recorded.
func (s *Stats) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Count)
}

// Stats computes statistics over every entry for name, or over all
// entries when name is empty.
func (s *Store) Stats(ctx context.Context, name string) (*Stats, error) {
	entries, err := s.List(ctx, 0, name)
	if err != nil {
		return nil, err
	}
	return Compute(entries), nil
}

// Compute builds statistics from entries.
func Compute(entries []Entry) *Stats {
	h := hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs)
	st := &Stats{}
	for i := range entries {
		e := &entries[i]
		st.Count++
		if e.Failed() {
			st.Errors++
		}
		if e.Error != "" {
			continue
		}
		_ = h.RecordValue(clampLatency(e.Duration))
	}
	if h.TotalCount() == 0 {
		return st
	}

	st.Min = usToDuration(h.Min())
	st.Max = usToDuration(h.Max())
	st.Mean = time.Duration(h.Mean() * float64(time.Microsecond))
	st.P50 = usToDuration(h.ValueAtQuantile(50))
	st.P95 = usToDuration(h.ValueAtQuantile(95))
	st.P99 = usToDuration(h.ValueAtQuantile(99))
	return st
}

func clampLatency(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	return us
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
