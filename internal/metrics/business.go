// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for guide refresh runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh metrics
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_refresh_total",
		Help: "Guide refresh runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	refreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_refresh_failures_total",
		Help: "Total number of refresh failures by stage",
	}, []string{"stage"}) // stage=config|auth|lineups|directory|schedules|programs|assemble|write

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sd2xmltv_refresh_duration_seconds",
		Help:    "Wall clock duration of a refresh run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sd2xmltv_last_success_timestamp_seconds",
		Help: "Unix time of the last successful refresh",
	})

	// Upstream metrics
	sdRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_sd_requests_total",
		Help: "Schedules Direct API requests by endpoint and status",
	}, []string{"endpoint", "status"}) // status=success|error|http_<code>

	chunksFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_chunks_failed_total",
		Help: "Schedule or program request chunks skipped after a failure",
	}, []string{"kind"}) // kind=schedules|programs

	// Merge metrics
	airingsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sd2xmltv_airings_skipped_total",
		Help: "Airings dropped because their start time did not parse",
	})

	catalogMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sd2xmltv_catalog_misses_total",
		Help: "Airings whose program was absent from the catalog",
	})

	xmltvChannelsWritten = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sd2xmltv_xmltv_channels_written",
		Help: "Number of channels written to XMLTV in last refresh",
	})

	xmltvProgrammesWritten = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sd2xmltv_xmltv_programmes_written",
		Help: "Number of programmes written to XMLTV in last refresh",
	})

	// Side effects
	logoDownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_logo_downloads_total",
		Help: "Station logo cache lookups by outcome",
	}, []string{"outcome"}) // outcome=cached|downloaded|failure

	notifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sd2xmltv_notify_total",
		Help: "Media server refresh triggers by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// RecordRefresh records the outcome and duration of one run.
func RecordRefresh(success bool, d time.Duration) {
	refreshDuration.Observe(d.Seconds())
	if success {
		refreshTotal.WithLabelValues("success").Inc()
		lastSuccess.SetToCurrentTime()
		return
	}
	refreshTotal.WithLabelValues("failure").Inc()
}

// IncRefreshFailure increments the failure counter for a pipeline stage.
func IncRefreshFailure(stage string) {
	refreshFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordSDRequest counts one Schedules Direct request.
func RecordSDRequest(endpoint, status string) {
	sdRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// IncChunkFailed counts a skipped request chunk.
func IncChunkFailed(kind string) {
	chunksFailedTotal.WithLabelValues(kind).Inc()
}

// AddAiringsSkipped adds n to the unparseable airing counter.
func AddAiringsSkipped(n int) {
	if n > 0 {
		airingsSkippedTotal.Add(float64(n))
	}
}

// AddCatalogMisses adds n to the catalog miss counter.
func AddCatalogMisses(n int) {
	if n > 0 {
		catalogMissesTotal.Add(float64(n))
	}
}

// RecordXMLTV sets the size of the last written guide.
func RecordXMLTV(channels, programmes int) {
	xmltvChannelsWritten.Set(float64(channels))
	xmltvProgrammesWritten.Set(float64(programmes))
}

// RecordLogo counts one logo cache outcome.
func RecordLogo(outcome string) {
	logoDownloadsTotal.WithLabelValues(outcome).Inc()
}

// RecordNotify counts one refresh trigger outcome.
func RecordNotify(success bool) {
	if success {
		notifyTotal.WithLabelValues("success").Inc()
		return
	}
	notifyTotal.WithLabelValues("failure").Inc()
}
