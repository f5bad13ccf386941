/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docroom/revisor/internal/version"
	"github.com/docroom/revisor/pkg/errors"
)

const (
	namespace      = "revisor"
	operationLabel = "operation"
	codeLabel      = "code"
	hostnameLabel  = "hostname"
	taskTypeLabel  = "task_type"
	eventTypeLabel = "event_type"
)

// Metrics manages the metric information that revisor is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	operationHandledTotal *prometheus.CounterVec
	operationSeconds      *prometheus.HistogramVec
	lockWaitSeconds       prometheus.Histogram

	consolidatedRevisionsTotal prometheus.Counter
	revisionEventsTotal        *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		operationHandledTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "operation_handled_total",
			Help:      "Total number of document operations completed, regardless of success or failure.",
		}, []string{operationLabel, codeLabel, hostnameLabel}),
		operationSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "operation_seconds",
			Help:      "The latency of document operations.",
		}, []string{operationLabel}),
		lockWaitSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "lock_wait_seconds",
			Help:      "The time spent waiting for document and room locks.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}),
		consolidatedRevisionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "consolidated_revisions_total",
			Help:      "The total count of revisions whose CDN resources were rewritten.",
		}),
		revisionEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "revision_events_total",
			Help:      "The total count of revision events recorded.",
		}, []string{eventTypeLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// ObserveOperation records the outcome and the latency of a document
// operation.
func (m *Metrics) ObserveOperation(hostname, operation string, err error, elapsed time.Duration) {
	code := "ok"
	if err != nil {
		code = errors.StatusOf(err).String()
	}

	m.operationHandledTotal.With(prometheus.Labels{
		operationLabel: operation,
		codeLabel:      code,
		hostnameLabel:  hostname,
	}).Inc()
	m.operationSeconds.With(prometheus.Labels{
		operationLabel: operation,
	}).Observe(elapsed.Seconds())
}

// ObserveLockWait adds an observation for the time spent acquiring a lock.
func (m *Metrics) ObserveLockWait(elapsed time.Duration) {
	m.lockWaitSeconds.Observe(elapsed.Seconds())
}

// AddConsolidatedRevisions adds the number of revisions rewritten by
// consolidation.
func (m *Metrics) AddConsolidatedRevisions(count int) {
	m.consolidatedRevisionsTotal.Add(float64(count))
}

// AddRevisionEvent adds a recorded revision event.
func (m *Metrics) AddRevisionEvent(eventType string) {
	m.revisionEventsTotal.With(prometheus.Labels{
		eventTypeLabel: eventType,
	}).Inc()
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
