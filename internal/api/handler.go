package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reel-transcribe-go/internal/logger"
	"reel-transcribe-go/internal/pipeline"
	"reel-transcribe-go/internal/types"
)

const maxBodyBytes = 1 << 20

// Handler is the HTTP adapter around a Pipeline.
type Handler struct {
	pipeline      *pipeline.Pipeline
	log           *logger.Logger
	invalidURLMsg string
}

func NewHandler(p *pipeline.Pipeline, sourceDomain string, log *logger.Logger) *Handler {
	return &Handler{
		pipeline:      p,
		log:           log,
		invalidURLMsg: fmt.Sprintf("Invalid %s URL", platformName(sourceDomain)),
	}
}

// Routes returns the service mux wrapped in CORS handling.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcribe", h.handleTranscribe)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/metrics", h.handleMetrics)
	return withCORS(mux)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	reqLog := h.log.WithRequest(r).WithField("handler", "transcribe")

	if r.Method != http.MethodPost {
		respondWithJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req types.TranscribeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		reqLog.WithField("error", err.Error()).Warn("invalid request body")
		respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.pipeline.ValidateSourceURL(req.URL); err != nil {
		reqLog.WithField("url", req.URL).Warn("rejected source url")
		respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: h.invalidURLMsg})
		return
	}

	reqLog = reqLog.WithField("url", req.URL)
	reqLog.Info("transcribe request received")

	start := time.Now()
	res, err := h.pipeline.Run(r.Context(), req.URL)
	reqLog = reqLog.WithField("job_id", res.JobID).WithField("duration_ms", time.Since(start).Milliseconds())

	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidSourceURL) {
			respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: h.invalidURLMsg})
			return
		}
		reqLog.WithField("error", err.Error()).Warn("pipeline returned error")
		respondWithJSON(w, http.StatusInternalServerError, types.ErrorResponse{
			Error:   "Failed to transcribe",
			Details: err.Error(),
			Kind:    string(types.KindOf(err)),
		})
		return
	}

	reqLog.Info("pipeline finished")
	respondWithJSON(w, http.StatusOK, types.TranscribeResponse{Success: true, Transcription: res.Transcript})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "Method not allowed"})
		return
	}
	respondWithJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, h.pipeline.Metrics().Format())
}

// respondWithJSON writes payload as a JSON response with the given status.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// platformName turns "instagram.com" into "Instagram".
func platformName(domain string) string {
	name := strings.TrimPrefix(strings.ToLower(domain), "www.")
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return "source"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
