// Package app assembles the production pipeline from configuration.
package app

import (
	"fmt"

	"reel-transcribe-go/internal/audio"
	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/fetcher"
	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/pipeline"
	"reel-transcribe-go/internal/resolver"
	"reel-transcribe-go/internal/transcription"
)

// NewResolver picks the resolver backend named by cfg.Resolver.
func NewResolver(cfg config.Config, log *logger.Logger) (pipeline.Resolver, error) {
	switch cfg.Resolver {
	case config.ResolverRapidAPI, "":
		return resolver.NewRapidAPI(cfg, log), nil
	case config.ResolverYtDlp:
		return resolver.NewYtDlp(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", cfg.Resolver)
	}
}

func NewPipeline(cfg config.Config, log *logger.Logger) (*pipeline.Pipeline, error) {
	res, err := NewResolver(cfg, log)
	if err != nil {
		return nil, err
	}
	return pipeline.New(
		res,
		fetcher.NewHTTPFetcher(cfg.FetchTimeout, log),
		audio.NewFFmpegExtractor(cfg, log),
		transcription.NewWhisper(cfg, log),
		pipeline.Options{
			ScratchDir:   cfg.ScratchDir,
			SourceDomain: cfg.SourceDomain,
			Timeout:      cfg.PipelineTimeout,
		},
		log,
	), nil
}
