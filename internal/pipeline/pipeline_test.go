package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/transcription"
	"reel-transcribe-go/internal/types"
)

const reelURL = "https://www.instagram.com/reel/C0ffee/"

type fakeResolver struct {
	calls atomic.Int32
	url   string
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, sourceURL string) (string, error) {
	f.calls.Add(1)
	return f.url, f.err
}

type fakeFetcher struct {
	calls atomic.Int32
	data  []byte
	err   error
	block bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, mediaURL, dest string) error {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := os.WriteFile(dest, f.data, 0o644); err != nil {
		return err
	}
	return f.err
}

type fakeExtractor struct {
	calls atomic.Int32
	data  []byte
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	f.calls.Add(1)
	if _, err := os.Stat(videoPath); err != nil {
		return err
	}
	if err := os.WriteFile(audioPath, f.data, 0o644); err != nil {
		return err
	}
	return f.err
}

type fakeTranscriber struct {
	calls    atomic.Int32
	segments []types.Segment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return transcription.Render(f.segments), nil
}

type fakes struct {
	r *fakeResolver
	f *fakeFetcher
	e *fakeExtractor
	t *fakeTranscriber
}

func newFakes() *fakes {
	return &fakes{
		r: &fakeResolver{url: "https://cdn.example/video.mp4"},
		f: &fakeFetcher{data: []byte("fake-video-bytes")},
		e: &fakeExtractor{data: []byte("fake-audio-bytes")},
		t: &fakeTranscriber{segments: []types.Segment{{Start: 0, Text: "Hi"}, {Start: 3, Text: "there"}}},
	}
}

func (fk *fakes) pipeline(t *testing.T, scratch string) *Pipeline {
	t.Helper()
	return New(fk.r, fk.f, fk.e, fk.t, Options{ScratchDir: scratch, SourceDomain: "instagram.com"}, logger.Discard())
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Empty(t, names, "scratch artifacts left behind")
}

func TestRunHappyPath(t *testing.T) {
	scratch := t.TempDir()
	fk := newFakes()
	p := fk.pipeline(t, scratch)

	res, err := p.Run(context.Background(), reelURL)
	require.NoError(t, err)
	assert.Equal(t, "[00:00] Hi\n\n[00:03] there", res.Transcript)
	assert.Equal(t, StateDone, res.State)
	assert.NotEmpty(t, res.JobID)
	assert.Empty(t, res.Error)
	assertScratchEmpty(t, scratch)

	assert.EqualValues(t, 1, p.Metrics().Runs.Load())
	assert.EqualValues(t, 1, p.Metrics().Succeeded.Load())
}

func TestRunIsIdempotent(t *testing.T) {
	fk := newFakes()
	p := fk.pipeline(t, t.TempDir())

	first, err := p.Run(context.Background(), reelURL)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), reelURL)
	require.NoError(t, err)

	assert.Equal(t, []byte(first.Transcript), []byte(second.Transcript))
	assert.NotEqual(t, first.JobID, second.JobID)
}

func TestRunRejectsForeignURL(t *testing.T) {
	scratch := t.TempDir()
	fk := newFakes()
	p := fk.pipeline(t, scratch)

	for _, u := range []string{"https://example.com/x", "", "   "} {
		res, err := p.Run(context.Background(), u)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSourceURL)
		assert.Equal(t, types.KindValidation, types.KindOf(err))
		assert.Equal(t, StateFailed, res.State)
		assert.Empty(t, res.JobID)
	}

	assert.Zero(t, fk.r.calls.Load())
	assert.Zero(t, fk.f.calls.Load())
	assert.Zero(t, fk.e.calls.Load())
	assert.Zero(t, fk.t.calls.Load())
	assert.Zero(t, p.Metrics().Runs.Load())
	assert.EqualValues(t, 3, p.Metrics().Failures(types.KindValidation))
	assertScratchEmpty(t, scratch)
}

func TestRunCleansUpOnEveryStageFailure(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		breakIt  func(fk *fakes)
		kind     types.Kind
		wantRuns [4]int32
	}{
		{
			name:     "resolve",
			breakIt:  func(fk *fakes) { fk.r.err = boom },
			kind:     types.KindResolution,
			wantRuns: [4]int32{1, 0, 0, 0},
		},
		{
			name:     "fetch",
			breakIt:  func(fk *fakes) { fk.f.err = boom },
			kind:     types.KindFetch,
			wantRuns: [4]int32{1, 1, 0, 0},
		},
		{
			name:     "extract",
			breakIt:  func(fk *fakes) { fk.e.err = boom },
			kind:     types.KindExtraction,
			wantRuns: [4]int32{1, 1, 1, 0},
		},
		{
			name:     "transcribe",
			breakIt:  func(fk *fakes) { fk.t.err = boom },
			kind:     types.KindTranscription,
			wantRuns: [4]int32{1, 1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch := t.TempDir()
			fk := newFakes()
			tt.breakIt(fk)
			p := fk.pipeline(t, scratch)

			res, err := p.Run(context.Background(), reelURL)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.kind, types.KindOf(err))
			assert.Equal(t, StateFailed, res.State)
			assert.Equal(t, err.Error(), res.Error)
			assert.Empty(t, res.Transcript)

			got := [4]int32{fk.r.calls.Load(), fk.f.calls.Load(), fk.e.calls.Load(), fk.t.calls.Load()}
			assert.Equal(t, tt.wantRuns, got)
			assert.EqualValues(t, 1, p.Metrics().Failures(tt.kind))
			assertScratchEmpty(t, scratch)
		})
	}
}

func TestRunKeepsTypedStageErrors(t *testing.T) {
	fk := newFakes()
	fk.r.err = types.ConfigurationError("resolve", errors.New("RapidAPI key not configured"))

	_, err := fk.pipeline(t, t.TempDir()).Run(context.Background(), reelURL)
	require.Error(t, err)
	assert.Equal(t, types.KindConfiguration, types.KindOf(err))
}

func TestRunEmptyResolvedURL(t *testing.T) {
	fk := newFakes()
	fk.r.url = ""

	_, err := fk.pipeline(t, t.TempDir()).Run(context.Background(), reelURL)
	require.Error(t, err)
	assert.Equal(t, types.KindResolution, types.KindOf(err))
	assert.Zero(t, fk.f.calls.Load())
}

func TestRunEmptyTranscriptFails(t *testing.T) {
	fk := newFakes()
	fk.t.segments = nil

	_, err := fk.pipeline(t, t.TempDir()).Run(context.Background(), reelURL)
	require.Error(t, err)
	assert.Equal(t, types.KindTranscription, types.KindOf(err))
}

func TestRunOverallDeadline(t *testing.T) {
	scratch := t.TempDir()
	fk := newFakes()
	fk.f.block = true
	p := New(fk.r, fk.f, fk.e, fk.t, Options{ScratchDir: scratch, SourceDomain: "instagram.com", Timeout: 50 * time.Millisecond}, logger.Discard())

	start := time.Now()
	_, err := p.Run(context.Background(), reelURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, types.KindFetch, types.KindOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assertScratchEmpty(t, scratch)
}

func TestConcurrentRunsUseDistinctArtifacts(t *testing.T) {
	scratch := t.TempDir()
	fk := newFakes()
	p := fk.pipeline(t, scratch)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Run(context.Background(), reelURL)
			assert.NoError(t, err)
			ids[i] = res.JobID
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate job id %s", id)
		seen[id] = true
	}
	assertScratchEmpty(t, scratch)
}

func TestArtifactNamesEmbedJobID(t *testing.T) {
	a := newArtifacts("/scratch", "job-1")
	assert.True(t, strings.HasSuffix(a.video, "video_job-1.mp4"))
	assert.True(t, strings.HasSuffix(a.audio, "audio_job-1.mp3"))
}

func TestReleaseIgnoresMissingFiles(t *testing.T) {
	a := newArtifacts(t.TempDir(), "missing")
	for _, p := range a.paths() {
		assert.NoError(t, removeWithRetry(p))
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateDone.Terminal())
	assert.False(t, StateFetching.Terminal())
}

func TestMetricsFormat(t *testing.T) {
	m := NewMetrics()
	m.Runs.Add(2)
	m.Succeeded.Add(1)
	m.recordFailure(types.KindFetch)

	out := m.Format()
	assert.Contains(t, out, "pipeline_runs 2\n")
	assert.Contains(t, out, "pipeline_succeeded 1\n")
	assert.Contains(t, out, `pipeline_failed{kind="fetch"} 1`)
}
