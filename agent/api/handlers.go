package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	historyx "github.com/tanpawarit/omega-summarizer/agent/history"
	requestx "github.com/tanpawarit/omega-summarizer/agent/request"
)

const (
	statusOK      = "ok"
	statusWarning = "warning"
)

type summaryRequest struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

type logEntry struct {
	Time    string `json:"time"`
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type summaryResponse struct {
	RequestID    string     `json:"request_id"`
	Status       string     `json:"status"`
	Summary      string     `json:"summary"`
	DownloadName string     `json:"download_name,omitempty"`
	Log          []logEntry `json:"log"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "omega-summarizer",
	})
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"models":  s.models,
		"default": s.defaultModel,
	})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.History(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("load history")
	}
	if items == nil {
		items = []historyx.Item{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearHistory(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createSummary accepts JSON {url, model} or a multipart form with an audio
// file. Failed runs are reported with status "warning", not an HTTP error.
func (s *Server) createSummary(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	ctx := requestx.ContextWithRequestID(r.Context(), chimw.GetReqID(r.Context()))

	var out requestx.Outcome
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(w, http.StatusRequestEntityTooLarge, "audio file is too large")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		model, ok := s.resolveModel(r.FormValue("model"))
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown model")
			return
		}
		recorded, _ := strconv.ParseBool(r.FormValue("recorded"))

		audio := requestx.Audio{Recorded: recorded}
		file, header, err := r.FormFile("audio")
		switch {
		case err == nil:
			defer file.Close()
			audio.Name = filepath.Base(header.Filename)
			audio.Data = file
		case errors.Is(err, http.ErrMissingFile):
		default:
			respondError(w, http.StatusBadRequest, "invalid audio upload")
			return
		}

		if audio.Data == nil {
			out = s.svc.SummarizeURL(ctx, r.FormValue("url"), model)
		} else {
			out = s.svc.SummarizeAudio(ctx, audio, model)
		}
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(w, http.StatusRequestEntityTooLarge, "request body is too large")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		model, ok := s.resolveModel(req.Model)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown model")
			return
		}
		out = s.svc.SummarizeURL(ctx, req.URL, model)
	}

	respondJSON(w, http.StatusOK, toSummaryResponse(out))
}

func (s *Server) resolveModel(model string) (string, bool) {
	model = strings.TrimSpace(model)
	if model == "" {
		return s.defaultModel, true
	}
	if len(s.models) > 0 && !slices.Contains(s.models, model) {
		return "", false
	}
	return model, true
}

func toSummaryResponse(out requestx.Outcome) summaryResponse {
	status := statusWarning
	if out.Result.IsOK() {
		status = statusOK
	}
	entries := make([]logEntry, 0, len(out.Entries))
	for _, e := range out.Entries {
		entries = append(entries, logEntry{
			Time:    e.Clock(),
			Tool:    e.Tool,
			Message: e.Message,
			Status:  string(e.Status),
		})
	}
	return summaryResponse{
		RequestID:    out.RequestID,
		Status:       status,
		Summary:      out.Result.String(),
		DownloadName: out.DownloadName,
		Log:          entries,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
