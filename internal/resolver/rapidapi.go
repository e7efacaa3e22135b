package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/types"
)

const (
	// maxPayloadBytes caps how much of a resolver response is read.
	maxPayloadBytes = 4 << 20
	// maxSummaryBytes caps the upstream body echoed into error messages.
	maxSummaryBytes = 512
)

// RapidAPI resolves post URLs through the RapidAPI downloader endpoint.
type RapidAPI struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewRapidAPI creates a RapidAPI resolver. A missing key is reported by
// Resolve, not here.
func NewRapidAPI(cfg config.Config, log *logger.Logger) *RapidAPI {
	return &RapidAPI{
		apiKey:  cfg.RapidAPIKey,
		host:    cfg.RapidAPIHost,
		baseURL: strings.TrimRight(cfg.RapidAPIBaseURL, "/"),
		client:  &http.Client{Timeout: cfg.ResolverTimeout},
		log:     log.Component("resolver.rapidapi"),
	}
}

// Resolve makes exactly one upstream call and extracts the direct media URL.
func (r *RapidAPI) Resolve(ctx context.Context, sourceURL string) (string, error) {
	if r.apiKey == "" {
		return "", types.ConfigurationError("resolve", errors.New("RapidAPI key not configured"))
	}

	endpoint := r.baseURL + "/convert?" + url.Values{"url": {sourceURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", types.ResolutionError("resolve", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("x-rapidapi-host", r.host)
	req.Header.Set("x-rapidapi-key", r.apiKey)
	req.Header.Set("Accept", "application/json")

	r.log.WithField("source_url", sourceURL).Debug("requesting media resolution")
	resp, err := r.client.Do(req)
	if err != nil {
		return "", types.ResolutionError("resolve", fmt.Errorf("RapidAPI request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return "", types.ResolutionError("resolve", fmt.Errorf("failed to read RapidAPI response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", types.ResolutionError("resolve",
			fmt.Errorf("RapidAPI Error: %d - %s", resp.StatusCode, summarize(body)))
	}

	payload := DecodePayload(body)
	mediaURL, rule, err := Extract(payload)
	if err != nil {
		r.log.WithError(err).Warn("resolver payload had no usable media URL")
		return "", types.ResolutionError("resolve", err)
	}

	r.log.WithFields(logrus.Fields{
		"rule":   rule,
		"fields": topLevelFields(payload),
	}).Info("media URL resolved")
	return mediaURL, nil
}

func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSummaryBytes {
		return s[:maxSummaryBytes] + fmt.Sprintf("... (%d bytes)", len(body))
	}
	return s
}
