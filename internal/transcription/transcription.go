package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

const maxErrorBody = 512

// VerboseResponse is the verbose_json response of a Whisper-compatible API.
type VerboseResponse struct {
	Task     string          `json:"task"`
	Language string          `json:"language"`
	Duration float64         `json:"duration"`
	Segments []types.Segment `json:"segments"`
	Text     string          `json:"text"`
}

// Transcript picks rendered segments when present, the raw text otherwise.
func (r VerboseResponse) Transcript() string {
	if len(r.Segments) > 0 {
		return Render(r.Segments)
	}
	return r.Text
}

// Whisper uploads audio files to an OpenAI-compatible transcription endpoint.
type Whisper struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	log      *logger.Logger
}

func NewWhisper(cfg config.Config, log *logger.Logger) *Whisper {
	return &Whisper{
		apiKey:   cfg.OpenAIKey,
		endpoint: strings.TrimRight(cfg.OpenAIBaseURL, "/") + "/audio/transcriptions",
		model:    cfg.WhisperModel,
		client:   &http.Client{Timeout: cfg.TranscribeTimeout},
		log:      log.Component("transcription"),
	}
}

// Transcribe sends audioPath as a streamed multipart upload and returns the
// rendered transcript.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if w.apiKey == "" {
		return "", types.ConfigurationError("transcribe", errors.New("OpenAI API key not configured"))
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", types.TranscriptionError("transcribe", fmt.Errorf("open audio: %w", err))
	}
	defer file.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, file, filepath.Base(audioPath), w.model))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, pr)
	if err != nil {
		return "", types.TranscriptionError("transcribe", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", types.TranscriptionError("transcribe", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", types.TranscriptionError("transcribe",
			fmt.Errorf("OpenAI Error: %d - %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	var out VerboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", types.TranscriptionError("transcribe", fmt.Errorf("json decode error: %w", err))
	}

	w.log.WithFields(logrus.Fields{
		"segments": len(out.Segments),
		"language": out.Language,
		"duration": out.Duration,
	}).Info("transcription received")
	return out.Transcript(), nil
}

func writeForm(mw *multipart.Writer, audio io.Reader, filename, model string) error {
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return err
	}
	if err := mw.WriteField("model", model); err != nil {
		return err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return err
	}
	return mw.Close()
}
