package fixtures

import (
	"github.com/go-kit/kit/metrics"
)

// CounterStub is a test implementation of the metrics.Counter interface.
type CounterStub struct {
	AddFunc func(labelValues []string, delta float64)

	labelValues []string
}

// With returns a counter with the given label values appended.
func (s *CounterStub) With(labelValues ...string) metrics.Counter {
	return &CounterStub{
		AddFunc:     s.AddFunc,
		labelValues: append(append([]string{}, s.labelValues...), labelValues...),
	}
}

// Add increments the counter.
func (s *CounterStub) Add(delta float64) {
	if s.AddFunc != nil {
		s.AddFunc(s.labelValues, delta)
	}
}

// HistogramStub is a test implementation of the metrics.Histogram interface.
type HistogramStub struct {
	ObserveFunc func(labelValues []string, value float64)

	labelValues []string
}

// With returns a histogram with the given label values appended.
func (s *HistogramStub) With(labelValues ...string) metrics.Histogram {
	return &HistogramStub{
		ObserveFunc: s.ObserveFunc,
		labelValues: append(append([]string{}, s.labelValues...), labelValues...),
	}
}

// Observe records an observation.
func (s *HistogramStub) Observe(value float64) {
	if s.ObserveFunc != nil {
		s.ObserveFunc(s.labelValues, value)
	}
}
