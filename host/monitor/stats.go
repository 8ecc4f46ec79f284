package monitor

import "math"

// Stats keeps running statistics over reported voltages. Mean and variance
// use Welford's online update.
type Stats struct {
	Count    uint64
	Min, Max float64

	mean, m2 float64
}

// Reset clears all accumulated values.
func (s *Stats) Reset() { *s = Stats{} }

// Update folds x into the statistics.
func (s *Stats) Update(x float64) {
	s.Count++
	if s.Count == 1 {
		s.mean, s.Min, s.Max = x, x, x
		return
	}
	last := s.mean
	s.mean += (x - s.mean) / float64(s.Count)
	s.m2 += (x - last) * (x - s.mean)
	s.Min = math.Min(s.Min, x)
	s.Max = math.Max(s.Max, x)
}

func (s *Stats) Mean() float64 { return s.mean }

// Variance is the sample variance, zero until two values are seen.
func (s *Stats) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.m2 / float64(s.Count-1)
}

func (s *Stats) StdDev() float64 { return math.Sqrt(s.Variance()) }
