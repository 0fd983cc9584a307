// Package api exposes the summarizer over HTTP.
package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	historyx "github.com/tanpawarit/omega-summarizer/agent/history"
	requestx "github.com/tanpawarit/omega-summarizer/agent/request"
	metricsx "github.com/tanpawarit/omega-summarizer/pkg/metrics"
)

// maxUploadBytes matches the transcription service limit plus form overhead.
const (
	maxUploadBytes = 26 << 20
	maxJSONBytes   = 64 << 10
)

// Service is the request surface the HTTP layer drives.
type Service interface {
	SummarizeURL(ctx context.Context, url string, modelID string) requestx.Outcome
	SummarizeAudio(ctx context.Context, audio requestx.Audio, modelID string) requestx.Outcome
	History(ctx context.Context) ([]historyx.Item, error)
	ClearHistory(ctx context.Context) error
}

type Config struct {
	Models       []string
	DefaultModel string
	AllowOrigins []string
}

type Server struct {
	svc          Service
	models       []string
	defaultModel string
}

func NewRouter(svc Service, cfg Config) http.Handler {
	s := &Server{
		svc:          svc,
		models:       slices.Clone(cfg.Models),
		defaultModel: cfg.DefaultModel,
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", metricsx.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/summaries", s.createSummary)
		r.Get("/models", s.listModels)
		r.Get("/history", s.listHistory)
		r.Delete("/history", s.clearHistory)
	})

	return r
}
