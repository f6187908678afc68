package pipeline

import (
	"context"

	"urlboard/internal/models"
	"urlboard/internal/modules/encoder"
	"urlboard/internal/modules/store"
	"urlboard/internal/modules/validation"

	"go.uber.org/zap"
)

// ValidateStage rejects candidates that are not absolute URLs.
type ValidateStage struct{}

func (ValidateStage) Execute(ctx context.Context, sub *models.Submission, logger *zap.Logger) error {
	if err := validation.IsValidURL(sub.Candidate); err != nil {
		return err
	}
	sub.Record = models.Record{URL: sub.Candidate}
	return nil
}

// EncodeStage waits for the attached image to be encoded.
// Submissions without an image pass straight through.
type EncodeStage struct {
	Encoder *encoder.Encoder
}

func (s EncodeStage) Execute(ctx context.Context, sub *models.Submission, logger *zap.Logger) error {
	if sub.Image == nil {
		return nil
	}

	select {
	case res := <-s.Encoder.Encode(ctx, *sub.Image):
		if res.Err != nil {
			return res.Err
		}
		sub.Record.Image = res.DataURI
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AppendStage stores the finished record.
type AppendStage struct {
	Store *store.Store
}

func (s AppendStage) Execute(ctx context.Context, sub *models.Submission, logger *zap.Logger) error {
	s.Store.Append(ctx, sub.Record)
	logger.Debug("record appended",
		zap.String("url", sub.Record.URL),
		zap.Bool("image", sub.Record.Image != ""))
	return nil
}

// NewSubmission builds the standard validate, encode, append pipeline.
func NewSubmission(st *store.Store, enc *encoder.Encoder, logger *zap.Logger) *Pipeline {
	p := New(logger)
	p.AddStage(ValidateStage{})
	p.AddStage(EncodeStage{Encoder: enc})
	p.AddStage(AppendStage{Store: st})
	return p
}
