// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics exposes Prometheus counters for split and restore
// outcomes. Labels describe what happened (mask source, commit path, error
// class); no label value is ever derived from secret material.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics.
	Namespace = "seedxor"

	LabelMaskSource = "mask_source"
	LabelStatus     = "status"
	LabelOutcome    = "outcome"
	LabelReason     = "reason"
	LabelParts      = "parts"

	StatusSuccess = "success"
	StatusError   = "error"

	MaskDeterministic = "deterministic"
	MaskRandom        = "random"

	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

var (
	// SplitsTotal counts split attempts by mask source and status.
	SplitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "splits_total",
			Help:      "Split attempts by mask source and status",
		},
		[]string{LabelMaskSource, LabelStatus},
	)

	// SplitDuration observes how long computing a PartSet takes.
	SplitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "split_duration_seconds",
			Help:      "Time to compute and self-check a part set",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{LabelMaskSource},
	)

	// SplitErrorsTotal counts split failures by class (entropy, self_check, ...).
	SplitErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "split_errors_total",
			Help:      "Split failures by error class",
		},
		[]string{LabelReason},
	)

	// PartsRejectedTotal counts word lists refused during restore.
	PartsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "parts_rejected_total",
			Help:      "Restore part submissions rejected by reason",
		},
		[]string{LabelReason},
	)

	// RestoresTotal counts finished restore sessions by outcome.
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "restores_total",
			Help:      "Restore sessions by terminal outcome",
		},
		[]string{LabelOutcome},
	)

	// CommitsTotal counts committed secrets by store path (permanent, ephemeral).
	CommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commits_total",
			Help:      "Reconstructed secrets handed to the store, by commit path",
		},
		[]string{LabelStatus},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordSplit records a split attempt.
func RecordSplit(maskSource, status string, seconds float64) {
	if !enabled.Load() {
		return
	}
	SplitsTotal.WithLabelValues(maskSource, status).Inc()
	if status == StatusSuccess {
		SplitDuration.WithLabelValues(maskSource).Observe(seconds)
	}
}

// RecordSplitError records the class of a failed split.
func RecordSplitError(reason string) {
	if !enabled.Load() {
		return
	}
	SplitErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordPartRejected records a refused part submission.
func RecordPartRejected(reason string) {
	if !enabled.Load() {
		return
	}
	PartsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordRestore records a terminal restore outcome.
func RecordRestore(outcome string) {
	if !enabled.Load() {
		return
	}
	RestoresTotal.WithLabelValues(outcome).Inc()
}

// RecordCommit records the store path a reconstructed secret took.
func RecordCommit(path string) {
	if !enabled.Load() {
		return
	}
	CommitsTotal.WithLabelValues(path).Inc()
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format, for devices without a scrape endpoint.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Enable turns recording on.
func Enable() {
	enabled.Store(true)
}

// Disable turns recording off.
func Disable() {
	enabled.Store(false)
}

// IsEnabled reports whether recording is on.
func IsEnabled() bool {
	return enabled.Load()
}
