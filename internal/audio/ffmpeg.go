package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

// maxStderrTail bounds how much ffmpeg output ends up in an error.
const maxStderrTail = 400

// FFmpegExtractor converts a video file to an audio-only file with fixed flags.
type FFmpegExtractor struct {
	binaryPath string
	codec      string
	bitrate    string
	log        *logger.Logger
}

func NewFFmpegExtractor(cfg config.Config, log *logger.Logger) *FFmpegExtractor {
	return &FFmpegExtractor{
		binaryPath: cfg.FFmpegPath,
		codec:      cfg.AudioCodec,
		bitrate:    cfg.AudioBitrate,
		log:        log.Component("audio"),
	}
}

// Args returns the ffmpeg argument list for one conversion.
func (e *FFmpegExtractor) Args(videoPath, audioPath string) []string {
	return []string{
		"-y", // overwrite
		"-i", videoPath,
		"-vn",
		"-acodec", e.codec,
		"-ab", e.bitrate,
		audioPath,
	}
}

// Extract writes the audio track of videoPath to audioPath.
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	cmd := exec.CommandContext(ctx, e.binaryPath, e.Args(videoPath, audioPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log.WithField("video", videoPath).Info("extracting audio")
	if err := cmd.Run(); err != nil {
		return types.ExtractionError("extract", fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String())))
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return types.ExtractionError("extract", fmt.Errorf("extracted audio file missing: %s", audioPath))
	}
	if info.Size() == 0 {
		return types.ExtractionError("extract", fmt.Errorf("extracted audio file is empty: %s", audioPath))
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrTail {
		return "..." + s[len(s)-maxStderrTail:]
	}
	return s
}
