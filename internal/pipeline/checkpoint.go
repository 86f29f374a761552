package pipeline

import (
	"context"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

// Checkpoint is a point where a run may stop for cancellation: every stage
// entry (Slide == -1) and the start of every segment.
type Checkpoint struct {
	Phase models.ExportPhase
	Slide int
}

func (p *Pipeline) checkpoint(ctx context.Context, rep Reporter, phase models.ExportPhase, slide int) error {
	if p.onCheckpoint != nil {
		p.onCheckpoint(Checkpoint{Phase: phase, Slide: slide})
	}
	if rep.CancelRequested() || ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// interrupted turns a tool error caused by cancellation into ErrCancelled.
func interrupted(ctx context.Context, rep Reporter, err error) error {
	if rep.CancelRequested() || ctx.Err() != nil {
		return ErrCancelled
	}
	return err
}
