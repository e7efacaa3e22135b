package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// artifacts are the scratch files owned by one run. Names embed the job id so
// concurrent runs never collide in the shared scratch directory.
type artifacts struct {
	video string
	audio string
}

func newArtifacts(dir, jobID string) *artifacts {
	return &artifacts{
		video: filepath.Join(dir, "video_"+jobID+".mp4"),
		audio: filepath.Join(dir, "audio_"+jobID+".mp3"),
	}
}

func (a *artifacts) paths() []string {
	return []string{a.video, a.video + ".part", a.audio}
}

// release deletes every artifact. Failures are logged, never returned.
func (a *artifacts) release(log *logrus.Entry) {
	for _, path := range a.paths() {
		if err := removeWithRetry(path); err != nil {
			log.WithField("path", path).WithField("error", err.Error()).Warn("failed to remove scratch file")
		}
	}
}

// removeWithRetry retries a few times for files still held open by a
// finishing child process.
func removeWithRetry(path string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = time.Second

	return backoff.Retry(func() error {
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithMaxRetries(bo, 3))
}
