/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	caseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cliharness_case_duration_seconds",
			Help:    "Time taken to run an acceptance case including cleanup",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
		[]string{"case"},
	)

	caseResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cliharness_case_results_total",
			Help: "Acceptance case outcomes",
		},
		[]string{"case", "status"},
	)
)
