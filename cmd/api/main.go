package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reel-transcribe-go/internal/api"
	"reel-transcribe-go/internal/app"
	"reel-transcribe-go/internal/config"
	"reel-transcribe-go/internal/logger"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	log.WithField("service", "reel-transcribe-go").Info("starting service")
	log.WithFields(map[string]interface{}{
		"RAPIDAPI_KEY":   config.KeyStatus(cfg.RapidAPIKey),
		"OPENAI_API_KEY": config.KeyStatus(cfg.OpenAIKey),
		"resolver":       cfg.Resolver,
		"scratch_dir":    cfg.ScratchDir,
	}).Info("configuration loaded")

	p, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build pipeline")
	}
	handler := api.NewHandler(p, cfg.SourceDomain, log)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler.Routes(),
		ReadTimeout: 15 * time.Second,
		// a single request may run the whole pipeline
		WriteTimeout: cfg.PipelineTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
