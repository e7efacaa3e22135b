package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"reel-transcribe-go/internal/app"
	"reel-transcribe-go/internal/batch"
	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/dataset"
	"reel-transcribe-go/internal/logger"
)

func main() {
	in := flag.String("in", "posts.xlsx", "input workbook with a column of post URLs")
	out := flag.String("out", "transcripts.xlsx", "output workbook")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	log.WithFields(map[string]interface{}{
		"in":             *in,
		"out":            *out,
		"concurrency":    cfg.BatchConcurrency,
		"rps":            cfg.BatchRPS,
		"RAPIDAPI_KEY":   config.KeyStatus(cfg.RapidAPIKey),
		"OPENAI_API_KEY": config.KeyStatus(cfg.OpenAIKey),
	}).Info("starting batch")

	records, err := dataset.Load(*in)
	if err != nil {
		log.WithError(err).Fatal("failed to load posts")
	}
	log.WithField("posts", len(records)).Info("posts loaded")

	p, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(p, cfg.BatchConcurrency, cfg.BatchRPS, log)
	results, runErr := runner.Run(ctx, records)
	if runErr != nil {
		log.WithError(runErr).Warn("batch interrupted")
	}

	summary := dataset.Summarize(results)
	if err := dataset.SaveResults(*out, results, summary); err != nil {
		log.WithError(err).Fatal("failed to save results")
	}
	log.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"out":       *out,
	}).Info("batch complete")

	if runErr != nil {
		os.Exit(1)
	}
}
