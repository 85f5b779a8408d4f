// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRefresh(t *testing.T) {
	beforeOK := testutil.ToFloat64(refreshTotal.WithLabelValues("success"))
	beforeFail := testutil.ToFloat64(refreshTotal.WithLabelValues("failure"))

	RecordRefresh(true, 2*time.Second)
	RecordRefresh(false, time.Second)

	assert.InDelta(t, beforeOK+1, testutil.ToFloat64(refreshTotal.WithLabelValues("success")), 0.001)
	assert.InDelta(t, beforeFail+1, testutil.ToFloat64(refreshTotal.WithLabelValues("failure")), 0.001)
	assert.Greater(t, testutil.ToFloat64(lastSuccess), float64(0))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(airingsSkippedTotal)
	AddAiringsSkipped(3)
	AddAiringsSkipped(0)
	assert.InDelta(t, before+3, testutil.ToFloat64(airingsSkippedTotal), 0.001)

	beforeMiss := testutil.ToFloat64(catalogMissesTotal)
	AddCatalogMisses(2)
	assert.InDelta(t, beforeMiss+2, testutil.ToFloat64(catalogMissesTotal), 0.001)

	beforeChunk := testutil.ToFloat64(chunksFailedTotal.WithLabelValues("programs"))
	IncChunkFailed("programs")
	assert.InDelta(t, beforeChunk+1, testutil.ToFloat64(chunksFailedTotal.WithLabelValues("programs")), 0.001)

	RecordXMLTV(4, 40)
	assert.InDelta(t, 4, testutil.ToFloat64(xmltvChannelsWritten), 0.001)
	assert.InDelta(t, 40, testutil.ToFloat64(xmltvProgrammesWritten), 0.001)
}

func TestWriteTextfileFrom(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "sd2xmltv_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(5)

	path := filepath.Join(t.TempDir(), "sd2xmltv.prom")
	require.NoError(t, WriteTextfileFrom(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sd2xmltv_test_total 5")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
