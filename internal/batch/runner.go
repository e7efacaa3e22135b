// Package batch transcribes many posts with bounded concurrency and a
// shared request rate.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/pipeline"
	"reel-transcribe-go/internal/types"
)

// Processor runs one post through the pipeline.
type Processor interface {
	Run(ctx context.Context, sourceURL string) (pipeline.Result, error)
}

type Runner struct {
	proc        Processor
	concurrency int
	limiter     *rate.Limiter
	log         *logger.Logger
}

// NewRunner caps in-flight posts at concurrency and starts at most rps posts
// per second. A non-positive rps disables the rate limit.
func NewRunner(proc Processor, concurrency int, rps float64, log *logger.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Runner{
		proc:        proc,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		log:         log.Component("batch"),
	}
}

// Run processes every record and returns results in input order. A failed post
// is recorded in its result and never stops the batch; only cancellation of
// ctx does, in which case the posts not yet started are marked failed.
func (r *Runner) Run(ctx context.Context, records []types.PostRecord) ([]types.PostResult, error) {
	results := make([]types.PostResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := r.limiter.Wait(gctx); err != nil {
				results[i] = failed(rec, types.KindUnknown, err, 0)
				return err
			}
			results[i] = r.process(gctx, rec)
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func (r *Runner) process(ctx context.Context, rec types.PostRecord) types.PostResult {
	log := r.log.WithField("row", rec.Row).WithField("url", rec.URL)
	start := time.Now()

	res, err := r.proc.Run(ctx, rec.URL)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.WithField("error", err.Error()).Warn("post failed")
		return failed(rec, types.KindOf(err), err, elapsed)
	}

	log.WithField("job_id", res.JobID).WithField("duration_ms", elapsed).Info("post transcribed")
	return types.PostResult{
		PostRecord: rec,
		Status:     res.State.String(),
		Transcript: res.Transcript,
		DurationMs: elapsed,
	}
}

func failed(rec types.PostRecord, kind types.Kind, err error, elapsed int64) types.PostResult {
	return types.PostResult{
		PostRecord: rec,
		Status:     pipeline.StateFailed.String(),
		Kind:       string(kind),
		Error:      err.Error(),
		DurationMs: elapsed,
	}
}
