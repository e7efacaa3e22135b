package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

// HTTPFetcher streams a remote media file to local scratch space.
type HTTPFetcher struct {
	client *http.Client
	log    *logger.Logger
}

// NewHTTPFetcher creates a fetcher whose whole transfer (headers and body)
// must finish within timeout.
func NewHTTPFetcher(timeout time.Duration, log *logger.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		log:    log.Component("fetcher"),
	}
}

// Fetch downloads mediaURL into dest. The body is written to dest+".part"
// and only renamed to dest after the copy completes.
func (f *HTTPFetcher) Fetch(ctx context.Context, mediaURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return types.FetchError("fetch", fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return types.FetchError("fetch", fmt.Errorf("failed to download video: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.FetchError("fetch", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return types.FetchError("fetch", fmt.Errorf("failed to create scratch dir: %w", err))
	}

	part := dest + ".part"
	n, err := writeFile(part, resp.Body)
	if err != nil {
		os.Remove(part)
		return types.FetchError("fetch", err)
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return types.FetchError("fetch", fmt.Errorf("failed to finalize video file: %w", err))
	}

	f.log.WithFields(logrus.Fields{"dest": dest, "bytes": n}).Info("video downloaded")
	return nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create video file %s: %w", path, err)
	}

	n, err := io.Copy(file, r)
	if err != nil {
		file.Close()
		return n, fmt.Errorf("failed to write video file: %w", err)
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("failed to close video file: %w", err)
	}
	return n, nil
}
