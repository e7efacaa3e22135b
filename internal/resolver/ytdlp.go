package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

// YtDlp resolves post URLs with the local yt-dlp binary.
type YtDlp struct {
	binaryPath string
	cfg        config.Config
	log        *logger.Logger
}

func NewYtDlp(cfg config.Config, log *logger.Logger) *YtDlp {
	return &YtDlp{
		binaryPath: cfg.YtDlpPath,
		cfg:        cfg,
		log:        log.Component("resolver.ytdlp"),
	}
}

// Resolve fetches the direct download link using yt-dlp --get-url.
func (d *YtDlp) Resolve(ctx context.Context, sourceURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.ResolverTimeout)
	defer cancel()

	// best single-file mp4, falling back to best single file
	cmd := exec.CommandContext(ctx, d.binaryPath, "-f", "best[ext=mp4]/b", "--get-url", "--no-warnings", sourceURL)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", types.ResolutionError("resolve", fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String())))
	}

	// yt-dlp may print several URLs (video + audio); take the first.
	for _, line := range strings.Split(out.String(), "\n") {
		if u, ok := fromString(line); ok {
			d.log.WithField("source_url", sourceURL).Info("media URL resolved")
			return u, nil
		}
	}
	return "", types.ResolutionError("resolve", errors.New("yt-dlp returned empty URL"))
}
