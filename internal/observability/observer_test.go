// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTimingLogsOperation(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf)

	done := obs.StartTiming("pipeline", "validate", "report.pdf")
	done(true, map[string]interface{}{"score": 95})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "pipeline", record["component"])
	assert.Equal(t, "validate", record["operation"])
	assert.Equal(t, "report.pdf", record["file_path"])
	assert.Equal(t, true, record["success"])
	assert.Equal(t, float64(95), record["score"])
	assert.NotEmpty(t, record["request_id"])
}

func TestObserverOffWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityOff, &buf)
	obs.StartTiming("pipeline", "validate", "x")(false, nil)
	assert.Zero(t, buf.Len())

	var nilObs *StandardObserver
	nilObs.StartTiming("pipeline", "validate", "x")(true, nil)
	assert.Equal(t, ObservabilityOff, nilObs.Level())
	assert.NotNil(t, nilObs.Logger())
}

func TestFailedOperationIsWarning(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf)
	obs.LogOperation(StandardObservabilityData{Component: "extract", Operation: "pdf", Error: "boom"})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "warn", record["level"])
	assert.Equal(t, "boom", record["error"])
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)
	require.Same(t, d, d.StandardObserver.DebugObserver)

	finish := d.StartStep("pipeline", "layout", "report.pdf")
	d.LogDetail("layout", "35 pages")
	d.LogMetric("layout", "issues", 0)
	finish(true, "ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "> pipeline: layout (report.pdf)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "     - layout: 35 pages"))
	assert.True(t, strings.HasPrefix(lines[3], "< pipeline: layout completed"))
}
