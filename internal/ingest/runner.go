package ingest

import (
	"context"
	"time"

	"bunasiem/internal/logger"
)

// PayloadSource delivers raw log payloads, e.g. the Redis list consumer.
type PayloadSource interface {
	Next(ctx context.Context) (map[string]interface{}, error)
	Close() error
}

// Runner drains a payload source into the pipeline. Ingestion stays
// strictly sequential: one payload is fully ingested before the next is
// popped.
type Runner struct {
	source PayloadSource
	pipe   *Pipeline
}

// NewRunner creates a runner over a payload source.
func NewRunner(source PayloadSource, pipe *Pipeline) *Runner {
	return &Runner{source: source, pipe: pipe}
}

// Run loops until the context is cancelled. Source errors back off
// briefly instead of terminating the loop; per-payload ingestion
// failures are already surfaced by the pipeline and do not stop intake.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		payload, err := r.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Errorf("Input source error: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if payload == nil {
			continue
		}

		if _, err := r.pipe.Ingest(payload); err != nil {
			logger.Warnf("Payload rejected by pipeline: %v", err)
		}
	}
}

// Close closes the underlying source.
func (r *Runner) Close() error {
	return r.source.Close()
}
