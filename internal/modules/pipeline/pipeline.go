package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"urlboard/internal/models"

	"go.uber.org/zap"
)

// ErrSubmissionPending is returned by Run while another submission is in flight.
var ErrSubmissionPending = errors.New("a submission is already pending")

// Stage defines the interface for a pipeline stage.
// Each stage inspects or completes the submission; an error rejects it.
type Stage interface {
	Execute(ctx context.Context, sub *models.Submission, logger *zap.Logger) error
}

// Pipeline runs a sequence of stages over one submission at a time.
type Pipeline struct {
	stages  []Stage     // List of stages in the pipeline
	logger  *zap.Logger // Logger for pipeline-wide logging
	pending atomic.Bool // Set while a submission is running
}

// New creates a new Pipeline instance with the given logger.
//
// Parameters:
//   - logger: Logger for logging pipeline events.
//
// Returns:
//   - A pointer to a new Pipeline instance.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage adds a stage to the pipeline's sequence.
//
// Parameters:
//   - stage: The stage to add.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Pending reports whether a submission is currently running.
func (p *Pipeline) Pending() bool {
	return p.pending.Load()
}

// Run executes the stages in order against sub.
//
// Only one submission runs at a time: a call made while another is in flight
// fails with ErrSubmissionPending without touching sub. The first stage error
// stops the run and is returned.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts.
//   - sub: The submission to process.
//
// Returns:
//   - An error if a stage rejected the submission or the context was canceled, nil otherwise.
func (p *Pipeline) Run(ctx context.Context, sub *models.Submission) error {
	if !p.pending.CompareAndSwap(false, true) {
		p.logger.Warn("submission rejected, previous one still pending",
			zap.String("candidate", sub.Candidate))
		return ErrSubmissionPending
	}
	defer p.pending.Store(false)

	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil
	}

	for idx, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline canceled", zap.Error(err))
			return err
		}
		if err := stage.Execute(ctx, sub, p.logger); err != nil {
			p.logger.Debug("stage rejected submission",
				zap.Int("stage", idx),
				zap.String("candidate", sub.Candidate),
				zap.Error(err))
			return err
		}
	}

	p.logger.Info("submission completed", zap.String("url", sub.Record.URL))
	return nil
}
