// Package history persists the list of successful summaries.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BackendFile    = "file"
	BackendUpstash = "upstash"
	BackendRedis   = "redis"
)

const defaultKey = "omega:summary_history"

var (
	ErrUnknownBackend = errors.New("unknown history backend")
	// ErrCorrupt marks stored data that could not be decoded. Callers may
	// overwrite it; any other load error means the store is unreachable.
	ErrCorrupt = errors.New("history data is corrupt")
)

// Item is one history entry. The JSON shape matches summary_history.json.
type Item struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Store loads and saves the whole history list. Missing data loads as an
// empty list. Corrupt data loads as an empty list with an ErrCorrupt error.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

type Config struct {
	Backend string `envconfig:"HISTORY_BACKEND" default:"file"`
	File    string `envconfig:"HISTORY_FILE" default:"summary_history.json"`
	Key     string `envconfig:"HISTORY_KEY" default:"omega:summary_history"`
}

// Open builds the configured backend.
func Open(cfg Config, upstash UpstashConfig, redis RedisConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return NewFileStore(cfg.File), nil
	case BackendUpstash:
		return NewUpstashStore(upstash, WithKey(cfg.Key))
	case BackendRedis:
		return NewRedisStore(redis, cfg.Key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

func decode(raw []byte) ([]Item, error) {
	if len(raw) == 0 {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Item{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return raw, nil
}
