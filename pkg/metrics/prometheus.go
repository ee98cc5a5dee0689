// Copyright 2024 The RINA Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace under which the metrics of an IPC process are exported.
const Namespace = "ipcp"

// NewPromCounterFrom creates a prometheus counter vector, registers it with
// the default registry and returns it as a Counter. Label values are bound
// incrementally through With.
func NewPromCounterFrom(opts prometheus.CounterOpts, labelNames []string) Counter {
	cv := prometheus.NewCounterVec(opts, labelNames)
	prometheus.MustRegister(cv)
	return &promCounter{cv: cv}
}

// NewPromGaugeFrom creates a prometheus gauge vector, registers it with the
// default registry and returns it as a Gauge. Label values are bound
// incrementally through With.
func NewPromGaugeFrom(opts prometheus.GaugeOpts, labelNames []string) Gauge {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	prometheus.MustRegister(gv)
	return &promGauge{gv: gv}
}

// promCounter implements Counter on a prometheus CounterVec. Each With call
// returns a new counter with the additional labels bound; the underlying
// vector is shared.
type promCounter struct {
	cv     *prometheus.CounterVec
	labels prometheus.Labels
}

// With implements Counter.
func (c *promCounter) With(labelValues ...string) Counter {
	return &promCounter{
		cv:     c.cv,
		labels: mergeLabels(c.labels, labelValues),
	}
}

// Add implements Counter.
func (c *promCounter) Add(delta float64) {
	c.cv.With(c.labels).Add(delta)
}

// promGauge implements Gauge on a prometheus GaugeVec. Each With call
// returns a new gauge with the additional labels bound; the underlying
// vector is shared.
type promGauge struct {
	gv     *prometheus.GaugeVec
	labels prometheus.Labels
}

// With implements Gauge.
func (g *promGauge) With(labelValues ...string) Gauge {
	return &promGauge{
		gv:     g.gv,
		labels: mergeLabels(g.labels, labelValues),
	}
}

// Set implements Gauge.
func (g *promGauge) Set(value float64) {
	g.gv.With(g.labels).Set(value)
}

// Add implements Gauge.
func (g *promGauge) Add(delta float64) {
	g.gv.With(g.labels).Add(delta)
}

// mergeLabels combines already-bound labels with additional key/value
// pairs. An incomplete trailing pair is dropped. The input map is not
// mutated; metrics handed out by With stay independent.
func mergeLabels(bound prometheus.Labels, labelValues []string) prometheus.Labels {
	merged := make(prometheus.Labels, len(bound)+len(labelValues)/2)
	for k, v := range bound {
		merged[k] = v
	}
	for i := 0; i+1 < len(labelValues); i += 2 {
		merged[labelValues[i]] = labelValues[i+1]
	}
	return merged
}
