// Package pipeline runs one post URL through resolve, fetch, extract and
// transcribe, and owns the scratch files created along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

// ErrInvalidSourceURL is wrapped by the entry guard's validation error.
var ErrInvalidSourceURL = errors.New("invalid source URL")

type Resolver interface {
	Resolve(ctx context.Context, sourceURL string) (string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, mediaURL, dest string) error
}

type Extractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Options are the scratch and guard settings of a Pipeline.
type Options struct {
	ScratchDir   string
	SourceDomain string
	// Timeout bounds a whole run. Zero means no overall deadline.
	Timeout time.Duration
}

type Pipeline struct {
	resolver    Resolver
	fetcher     Fetcher
	extractor   Extractor
	transcriber Transcriber
	opts        Options
	metrics     *Metrics
	log         *logger.Logger
	newID       func() string
}

func New(r Resolver, f Fetcher, e Extractor, t Transcriber, opts Options, log *logger.Logger) *Pipeline {
	return &Pipeline{
		resolver:    r,
		fetcher:     f,
		extractor:   e,
		transcriber: t,
		opts:        opts,
		metrics:     NewMetrics(),
		log:         log.Component("pipeline"),
		newID:       uuid.NewString,
	}
}

// Result describes one finished run.
type Result struct {
	JobID      string `json:"job_id,omitempty"`
	SourceURL  string `json:"source_url"`
	Transcript string `json:"transcript,omitempty"`
	State      State  `json:"state"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// ValidateSourceURL rejects URLs that do not reference the source platform.
func (p *Pipeline) ValidateSourceURL(sourceURL string) error {
	if strings.TrimSpace(sourceURL) == "" {
		return types.ValidationError("validate", fmt.Errorf("%w: url is required", ErrInvalidSourceURL))
	}
	if !strings.Contains(strings.ToLower(sourceURL), strings.ToLower(p.opts.SourceDomain)) {
		return types.ValidationError("validate", fmt.Errorf("%w: must reference %s", ErrInvalidSourceURL, p.opts.SourceDomain))
	}
	return nil
}

// Run executes every stage in order. On any failure the remaining stages are
// skipped. Scratch artifacts are removed before Run returns, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (Result, error) {
	start := time.Now()
	res := Result{SourceURL: sourceURL, State: StateIdle}

	if err := p.ValidateSourceURL(sourceURL); err != nil {
		p.metrics.recordFailure(types.KindValidation)
		res.State = StateFailed
		res.Error = err.Error()
		return res, err
	}

	res.JobID = p.newID()
	log := p.log.WithFields(logrus.Fields{"job_id": res.JobID, "source_url": sourceURL})
	p.metrics.Runs.Add(1)

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	art := newArtifacts(p.opts.ScratchDir, res.JobID)
	defer art.release(log)

	log.Info("starting job")
	transcript, err := p.stages(ctx, &res, art, log)
	res.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		failedAt := res.State
		p.transition(&res, StateFailed, log)
		res.Error = err.Error()
		p.metrics.recordFailure(types.KindOf(err))
		log.WithFields(logrus.Fields{
			"stage":       failedAt.String(),
			"kind":        string(types.KindOf(err)),
			"error":       err.Error(),
			"duration_ms": res.DurationMs,
		}).Error("job failed")
		return res, err
	}

	res.Transcript = transcript
	p.transition(&res, StateDone, log)
	p.metrics.Succeeded.Add(1)
	log.WithField("duration_ms", res.DurationMs).Info("job completed")
	return res, nil
}

func (p *Pipeline) stages(ctx context.Context, res *Result, art *artifacts, log *logrus.Entry) (string, error) {
	p.transition(res, StateResolving, log)
	mediaURL, err := p.resolver.Resolve(ctx, res.SourceURL)
	if err != nil {
		return "", stageError(types.KindResolution, "resolve", err)
	}
	if mediaURL == "" {
		return "", types.ResolutionError("resolve", errors.New("no video url resolved"))
	}
	log.WithField("media_url", mediaURL).Debug("video URL obtained")

	p.transition(res, StateFetching, log)
	if err := p.fetcher.Fetch(ctx, mediaURL, art.video); err != nil {
		return "", stageError(types.KindFetch, "fetch", err)
	}

	p.transition(res, StateExtracting, log)
	if err := p.extractor.Extract(ctx, art.video, art.audio); err != nil {
		return "", stageError(types.KindExtraction, "extract", err)
	}

	p.transition(res, StateTranscribing, log)
	transcript, err := p.transcriber.Transcribe(ctx, art.audio)
	if err != nil {
		return "", stageError(types.KindTranscription, "transcribe", err)
	}
	if transcript == "" {
		return "", types.TranscriptionError("transcribe", errors.New("empty transcript"))
	}
	return transcript, nil
}

func (p *Pipeline) transition(res *Result, next State, log *logrus.Entry) {
	log.WithFields(logrus.Fields{"from": res.State.String(), "to": next.String()}).Debug("state change")
	res.State = next
}

// stageError keeps a typed error as is and tags anything else with the
// kind of the stage it came from.
func stageError(kind types.Kind, op string, err error) error {
	if types.KindOf(err) != types.KindUnknown {
		return err
	}
	return &types.Error{Kind: kind, Op: op, Err: err}
}
