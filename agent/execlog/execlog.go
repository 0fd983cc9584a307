// Package execlog records the execution log of one summarization request.
//
// A Log is created per top-level request and travels through the context, so
// concurrent requests never interleave their entries. Every entry is also
// mirrored to the process logger.
package execlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Status string

const (
	StatusWorking Status = "working"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const timeLayout = "15:04:05"

type Entry struct {
	Time    time.Time `json:"-"`
	Tool    string    `json:"tool"`
	Message string    `json:"message"`
	Status  Status    `json:"status"`
}

// Clock renders the entry time the way the execution log shows it.
func (e Entry) Clock() string {
	return e.Time.Format(timeLayout)
}

type Log struct {
	requestID string
	now       func() time.Time
	logger    zerolog.Logger

	mu      sync.Mutex
	entries []Entry
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

func WithRequestID(id string) Option {
	return func(l *Log) {
		if id != "" {
			l.requestID = id
		}
	}
}

func New(opts ...Option) *Log {
	l := &Log{
		requestID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.logger = log.Logger.With().Str("request_id", l.requestID).Logger()
	return l
}

func (l *Log) RequestID() string {
	return l.requestID
}

func (l *Log) Add(tool, message string, status Status) {
	entry := Entry{
		Time:    l.now().Truncate(time.Second),
		Tool:    tool,
		Message: message,
		Status:  status,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	event := l.logger.Info()
	if status == StatusError {
		event = l.logger.Warn()
	}
	event.Str("tool", tool).Str("status", string(status)).Msg(message)
}

func (l *Log) Working(tool, message string) { l.Add(tool, message, StatusWorking) }
func (l *Log) Success(tool, message string) { l.Add(tool, message, StatusSuccess) }
func (l *Log) Error(tool, message string)   { l.Add(tool, message, StatusError) }

// Entries returns a snapshot of the log in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

type ctxKey struct{}

func WithLog(ctx context.Context, l *Log) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request log, or a detached log when none is attached.
func FromContext(ctx context.Context) *Log {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Log); ok && l != nil {
			return l
		}
	}
	return New()
}
