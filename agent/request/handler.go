// Package request turns one user submission (a URL or an audio upload) into
// an orchestrator run with its own execution log, and records successful
// summaries in the history store.
package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	historyx "github.com/tanpawarit/omega-summarizer/agent/history"
)

const (
	logSource     = "system"
	titleLimit    = 30
	emptyInputMsg = contractx.WarningMarker + " Please enter a URL or provide audio to get started."
)

// Runner executes one orchestrator run.
type Runner interface {
	Run(ctx context.Context, userInput string, modelID string) contractx.Result
}

// Outcome is everything a caller needs to present one request.
type Outcome struct {
	Result       contractx.Result
	Entries      []execlogx.Entry
	RequestID    string
	DownloadName string
}

// Audio is an uploaded file or a microphone recording.
type Audio struct {
	Name     string
	Data     io.Reader
	Recorded bool
}

type requestIDKey struct{}

// ContextWithRequestID makes id the request id of the execution log created
// for ctx, so transport and execution logs share one id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithTempDir sets where audio uploads are staged. Empty uses os.TempDir.
func WithTempDir(dir string) Option {
	return func(h *Handler) {
		h.tempDir = dir
	}
}

func WithDefaultModel(modelID string) Option {
	return func(h *Handler) {
		if id := strings.TrimSpace(modelID); id != "" {
			h.defaultModel = id
		}
	}
}

type Handler struct {
	runner       Runner
	store        historyx.Store
	defaultModel string
	tempDir      string
	now          func() time.Time

	// mu serializes history load-append-save cycles.
	mu sync.Mutex
}

func New(runner Runner, store historyx.Store, opts ...Option) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if store == nil {
		return nil, errors.New("history store is required")
	}
	h := &Handler{
		runner: runner,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

func (h *Handler) SummarizeURL(ctx context.Context, rawURL string, modelID string) Outcome {
	url := strings.TrimSpace(rawURL)
	elog := h.newLog(ctx)
	if url == "" {
		return h.outcome(elog, contractx.Fail(emptyInputMsg))
	}

	elog.Working(logSource, fmt.Sprintf("URL detected: %s", url))
	res := h.run(ctx, elog, fmt.Sprintf("Please summarize this content: %s", url), modelID)
	if res.IsOK() {
		h.append(ctx, historyx.Item{Title: URLTitle(url), Summary: res.Text(), CreatedAt: h.now()})
	}
	return h.outcome(elog, res)
}

// SummarizeAudio stages the audio in a temp file for the duration of the run.
// The file is removed on every exit path.
func (h *Handler) SummarizeAudio(ctx context.Context, audio Audio, modelID string) Outcome {
	elog := h.newLog(ctx)
	if audio.Data == nil {
		return h.outcome(elog, contractx.Fail(emptyInputMsg))
	}

	source := "Uploaded File"
	if audio.Recorded {
		source = "Voice Recording"
	}
	elog.Working(logSource, fmt.Sprintf("Audio detected: %s", source))

	path, err := h.stage(audio)
	if err != nil {
		elog.Error(logSource, err.Error())
		return h.outcome(elog, contractx.Failf("Could not store the audio for processing: %v", err))
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("remove staged audio")
		}
	}()

	input := fmt.Sprintf("Please summarize this audio input from %s located at: %s", source, path)
	res := h.run(ctx, elog, input, modelID)
	if res.IsOK() {
		h.append(ctx, historyx.Item{Title: h.audioTitle(audio), Summary: res.Text(), CreatedAt: h.now()})
	}
	return h.outcome(elog, res)
}

func (h *Handler) newLog(ctx context.Context) *execlogx.Log {
	return execlogx.New(
		execlogx.WithClock(h.now),
		execlogx.WithRequestID(RequestIDFromContext(ctx)),
	)
}

func (h *Handler) History(ctx context.Context) ([]historyx.Item, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Load(ctx)
}

func (h *Handler) ClearHistory(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Save(ctx, []historyx.Item{})
}

// run detaches from caller cancellation: a started request always reaches
// one of its bounded outcomes.
func (h *Handler) run(ctx context.Context, elog *execlogx.Log, input string, modelID string) contractx.Result {
	if id := strings.TrimSpace(modelID); id != "" {
		modelID = id
	} else {
		modelID = h.defaultModel
	}
	ctx = execlogx.WithLog(context.WithoutCancel(ctx), elog)
	return h.runner.Run(ctx, input, modelID)
}

func (h *Handler) stage(audio Audio) (string, error) {
	ext := ".wav"
	if !audio.Recorded {
		ext = filepath.Ext(audio.Name)
	}

	f, err := os.CreateTemp(h.tempDir, "omega-audio-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := io.Copy(f, audio.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func (h *Handler) append(ctx context.Context, item historyx.Item) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	items, err := h.store.Load(ctx)
	switch {
	case errors.Is(err, historyx.ErrCorrupt):
		log.Warn().Err(err).Msg("load history; starting from an empty list")
		items = nil
	case err != nil:
		log.Error().Err(err).Str("title", item.Title).Msg("load history; summary not recorded")
		return
	}
	items = append(items, item)
	if err := h.store.Save(ctx, items); err != nil {
		log.Error().Err(err).Msg("save history")
	}
}

func (h *Handler) outcome(elog *execlogx.Log, res contractx.Result) Outcome {
	out := Outcome{
		Result:    res,
		Entries:   elog.Entries(),
		RequestID: elog.RequestID(),
	}
	if res.IsOK() {
		out.DownloadName = DownloadName(h.now())
	}
	return out
}

func (h *Handler) audioTitle(audio Audio) string {
	name := strings.TrimSpace(filepath.Base(audio.Name))
	if audio.Recorded || name == "" || name == "." {
		name = "Recording_" + h.now().Format("1504")
	}
	return "🎤 " + name
}

// URLTitle is the history title of a URL: the part after the last "//",
// cut to 30 characters.
func URLTitle(url string) string {
	display := url
	if i := strings.LastIndex(url, "//"); i >= 0 {
		display = url[i+2:]
	}
	display = contractx.FirstRunes(display, titleLimit)
	return "🔗 " + display
}

// DownloadName is the suggested file name for a summary generated at t.
func DownloadName(t time.Time) string {
	return "omega_summary_" + t.Format("20060102_150405") + ".md"
}
