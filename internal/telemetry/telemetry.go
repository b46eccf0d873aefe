// Package telemetry collects lightweight run metrics and flushes them as
// structured log events. Collectors are passed explicitly, never global.
package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter MetricType = "counter"
	Gauge   MetricType = "gauge"
	Timer   MetricType = "timer"
)

// Metric is one recorded measurement.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Unit      string            `json:"unit,omitempty"`
}

// Collector accumulates metrics for one process run. A disabled collector
// records nothing and costs almost nothing.
type Collector struct {
	mu      sync.Mutex
	metrics []Metric
	enabled bool
	log     zerolog.Logger
}

func NewCollector(enabled bool, log zerolog.Logger) *Collector {
	return &Collector{enabled: enabled, log: log}
}

// Count increments a counter metric.
func (c *Collector) Count(name string, value float64, labels map[string]string) {
	c.add(Metric{Name: name, Type: Counter, Value: value, Labels: labels, Timestamp: time.Now()})
}

// Gauge records a point-in-time value.
func (c *Collector) Gauge(name string, value float64, labels map[string]string) {
	c.add(Metric{Name: name, Type: Gauge, Value: value, Labels: labels, Timestamp: time.Now()})
}

// Time records a duration in milliseconds.
func (c *Collector) Time(name string, d time.Duration, labels map[string]string) {
	c.add(Metric{
		Name:      name,
		Type:      Timer,
		Value:     float64(d.Milliseconds()),
		Labels:    labels,
		Timestamp: time.Now(),
		Unit:      "ms",
	})
}

func (c *Collector) add(m Metric) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.metrics = append(c.metrics, m)
	c.mu.Unlock()
}

// Snapshot returns a copy of everything recorded so far.
func (c *Collector) Snapshot() []Metric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Metric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Flush logs all recorded metrics and clears the buffer.
func (c *Collector) Flush() {
	c.mu.Lock()
	metrics := c.metrics
	c.metrics = nil
	c.mu.Unlock()

	for _, m := range metrics {
		ev := c.log.Debug().
			Str("name", m.Name).
			Str("type", string(m.Type)).
			Float64("value", m.Value).
			Time("timestamp", m.Timestamp)
		if m.Unit != "" {
			ev = ev.Str("unit", m.Unit)
		}
		if len(m.Labels) > 0 {
			ev = ev.Interface("labels", m.Labels)
		}
		ev.Msg("metric")
	}
}
