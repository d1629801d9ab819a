// Package stats provides instrumentation counters for the heap's collector.
//
// tinylisp is single-threaded by design (spec: thread safety is a non-goal),
// so unlike the teacher package this is grounded on, these counters are
// plain fields rather than atomics.
package stats

import "slices"

// Mean tracks a running average statistic.
//
// The zero value is ready to use.
type Mean struct {
	total, samples float64
}

// Record records a sample.
func (m *Mean) Record(sample float64) {
	m.total += sample
	m.samples++
}

// Get returns the mean value of this statistic.
func (m *Mean) Get() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / m.samples
}

// Median tracks a median statistic over the last n samples.
//
// Must be constructed with [NewMedian].
type Median struct {
	samples []float64 // Ring buffer.
	w       int        // Offset at which to write the next sample.
	n       int        // Total number of samples ever recorded.
}

// NewMedian returns a new median statistic which remembers the last n
// samples.
func NewMedian(n int) *Median {
	return &Median{samples: make([]float64, n)}
}

// Record records a sample.
func (m *Median) Record(sample float64) {
	m.samples[m.w] = sample
	m.w++
	if m.w == len(m.samples) {
		m.w = 0
	}
	m.n++
}

// Get returns the median value of this statistic.
func (m *Median) Get() float64 {
	samples := slices.Clone(m.samples[:min(m.n, len(m.samples))])
	slices.Sort(samples)

	switch {
	case len(samples) == 0:
		return 0
	case len(samples)%2 == 0:
		a := samples[len(samples)/2-1]
		b := samples[len(samples)/2]
		return (a + b) / 2
	default:
		return samples[len(samples)/2]
	}
}

// GC aggregates the instrumentation a [heap.Heap] exposes about its
// collector.
type GC struct {
	Collections  int
	LiveBytes    Mean
	BytesMoved   Mean
	PauseSamples *Median
}

// NewGC returns a ready-to-use GC stats block with a 256-sample median
// window of bytes reclaimed per collection.
func NewGC() GC {
	return GC{PauseSamples: NewMedian(256)}
}
