package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/facet/internal/diffparse"
	"github.com/dshills/facet/internal/finding"
)

// Context is the shared input handed to each stage. Diff is read-only;
// Previous is a per-stage snapshot of every finding produced by earlier
// stages, in execution order. Stages must not mutate either.
type Context struct {
	Diff     *diffparse.ParsedDiff
	Previous []finding.Finding
}

// Stage is one pluggable analysis step. A Stage may fail or return no
// findings; the orchestrator absorbs both.
type Stage interface {
	Name() string
	Run(ctx context.Context, rc *Context) (finding.StageResult, error)
}

// Meta carries run metadata into the report.
type Meta struct {
	Mode string
	Ref  string
}

// Orchestrator runs a fixed, ordered list of stages strictly sequentially.
// Order matters: later stages condition their analysis on earlier stages'
// findings, so stages are never reordered or parallelized.
type Orchestrator struct {
	stages []Stage
	log    *zap.Logger
}

// New builds an Orchestrator. An empty stage list is the only setup
// failure at this level.
func New(stages []Stage, log *zap.Logger) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, errors.New("pipeline: no stages configured")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{stages: stages, log: log}, nil
}

// Execute runs every configured stage against the diff and aggregates the
// results. Individual stage failures are logged and recorded as empty
// StageResults; once execution starts the pipeline always reaches
// aggregation. Total elapsed time is wall-clock for the whole run, not the
// sum of per-stage times.
func (o *Orchestrator) Execute(ctx context.Context, diff *diffparse.ParsedDiff, meta Meta) (*finding.Report, error) {
	if diff == nil {
		return nil, errors.New("pipeline: nil diff")
	}

	start := time.Now()
	runID := uuid.NewString()
	log := o.log.With(zap.String("run", runID))

	var accumulated []finding.Finding
	results := make([]finding.StageResult, 0, len(o.stages))

	for i, stage := range o.stages {
		// Each stage gets its own copy of the history so no stage can
		// mutate what a later one sees.
		snapshot := make([]finding.Finding, len(accumulated))
		copy(snapshot, accumulated)

		log.Info("running stage",
			zap.String("stage", stage.Name()),
			zap.Int("position", i+1),
			zap.Int("previousFindings", len(snapshot)))

		stageStart := time.Now()
		result, err := o.runStage(ctx, stage, &Context{Diff: diff, Previous: snapshot})
		if err != nil {
			log.Warn("stage failed, continuing",
				zap.String("stage", stage.Name()),
				zap.Error(err))
			result = finding.StageResult{StageName: stage.Name(), Elapsed: time.Since(stageStart)}
		}
		if result.StageName == "" {
			result.StageName = stage.Name()
		}
		if result.Elapsed == 0 {
			result.Elapsed = time.Since(stageStart)
		}

		log.Info("stage complete",
			zap.String("stage", stage.Name()),
			zap.Int("findings", len(result.Findings)),
			zap.Duration("elapsed", result.Elapsed))

		results = append(results, result)
		accumulated = append(accumulated, result.Findings...)
	}

	report := finding.Aggregate(runID, results, time.Since(start))
	report.Mode = meta.Mode
	report.Ref = meta.Ref
	report.DiffSummary = diff.Summary
	return report, nil
}

// runStage isolates one stage invocation, converting a panic into an
// ordinary stage error.
func (o *Orchestrator) runStage(ctx context.Context, s Stage, rc *Context) (result finding.StageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Run(ctx, rc)
}
