// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "track")
	require.NoError(t, PrepareOutputDir(dir))

	report := Report{
		RunID:     "run-1",
		StartedAt: at(9, 0),
		Planned:   2,
		Results: []Result{
			{Index: 0, Event: event("A", at(9, 0), at(9, 30)), Decision: Decision{Kind: InProgress}, Outcome: recorded()},
			{Index: 1, Event: event("B", at(8, 0), at(8, 30)), Decision: Decision{Kind: Past}, Outcome: failed(errors.New("boom"))},
		},
	}

	path, err := WriteReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFileName), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded["runId"])

	results := decoded["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "in_progress", first["decision"].(map[string]any)["kind"])
	assert.Equal(t, "recorded", first["outcome"].(map[string]any)["kind"])
	second := results[1].(map[string]any)
	assert.Equal(t, "boom", second["outcome"].(map[string]any)["error"])

	// Overwrite keeps a single file.
	_, err = WriteReport(dir, report)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteReport_MissingDir(t *testing.T) {
	_, err := WriteReport(filepath.Join(t.TempDir(), "nope"), Report{})
	require.Error(t, err)
}
