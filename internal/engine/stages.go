package engine

import (
	"encoding/json"
	"time"
)

// Stage names a timed pipeline step.
type Stage string

// Pipeline stages in execution order.
const (
	StageEdgeParsing        Stage = "edge_parsing"
	StageNodeParsing        Stage = "node_parsing"
	StageDataTransformation Stage = "data_transformation"
	StageGraphPreparation   Stage = "graph_preparation"
	StageRenderInit         Stage = "render_init"
	StageTotal              Stage = "total_time"
)

// Stages lists every stage in report order.
var Stages = []Stage{
	StageEdgeParsing,
	StageNodeParsing,
	StageDataTransformation,
	StageGraphPreparation,
	StageRenderInit,
	StageTotal,
}

// Timing is the wall-clock duration of one stage.
type Timing struct {
	Stage    Stage
	Duration time.Duration
}

// MarshalJSON reports the duration in seconds.
func (t Timing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Stage   Stage   `json:"stage"`
		Seconds float64 `json:"seconds"`
	}{t.Stage, t.Duration.Seconds()})
}

// timed runs fn and appends its duration to res.
func (e *Engine) timed(res *Result, stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	e.record(res, stage, time.Since(start))
	return err
}

func (e *Engine) record(res *Result, stage Stage, d time.Duration) {
	res.Timings = append(res.Timings, Timing{Stage: stage, Duration: d})
	if e.metrics != nil {
		e.metrics.ObserveStage(string(stage), d)
	}
	e.logger.Debug("stage finished", "run_id", res.RunID, "stage", stage, "duration", d)
}
