package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Record(t *testing.T) {
	r := NewRegistry()

	r.ObserveStage("edge_parsing", 1500*time.Millisecond)
	r.ObserveStage("edge_parsing", 250*time.Millisecond)
	r.SetRows("nodes", 42)
	r.RecordRun(nil)
	r.RecordRun(nil)
	r.RecordRun(errors.New("boom"))

	assert.InDelta(t, 0.25, testutil.ToFloat64(r.StageDuration.WithLabelValues("edge_parsing")), 1e-9)
	assert.Equal(t, 42.0, testutil.ToFloat64(r.TableRows.WithLabelValues("nodes")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("failure")))
}

func TestRegistry_Isolated(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.SetRows("edges", 7)

	assert.Equal(t, 1, testutil.CollectAndCount(a.TableRows))
	assert.Equal(t, 0, testutil.CollectAndCount(b.TableRows))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveStage("total_time", 2*time.Second)
	r.SetRows("edges", 1000)

	path := filepath.Join(t.TempDir(), "graphprep.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `graphprep_stage_duration_seconds{stage="total_time"} 2`)
	assert.Contains(t, string(data), `graphprep_table_rows{table="edges"} 1000`)
}

func TestRegistry_WriteTextfileBadDir(t *testing.T) {
	r := NewRegistry()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom"))
	assert.ErrorContains(t, err, "failed to write metrics")
}
