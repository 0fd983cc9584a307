// Package youtube fetches caption transcripts for public YouTube videos.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

var (
	ErrNoCaptions = errors.New("video has no caption tracks")
	ErrUnplayable = errors.New("video is not playable")
)

type Config struct {
	Languages []string      `envconfig:"YOUTUBE_CAPTION_LANGUAGES" default:"en"`
	Timeout   time.Duration `envconfig:"YOUTUBE_TIMEOUT" default:"30s"`
}

type Segment struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// transcriptAPI is the part of the YouTube client used here.
type transcriptAPI interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetTranscriptCtx(ctx context.Context, video *yt.Video, lang string) (yt.VideoTranscript, error)
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func withAPI(api transcriptAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

type Client struct {
	api        transcriptAPI
	languages  []string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	languages := make([]string, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		if l = strings.TrimSpace(l); l != "" {
			languages = append(languages, l)
		}
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	c := &Client{
		languages:  languages,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.api == nil {
		c.api = &yt.Client{HTTPClient: c.httpClient}
	}
	return c
}

// Captions returns caption texts in timeline order.
func (c *Client) Captions(ctx context.Context, videoID string) ([]string, error) {
	segments, err := c.Transcript(ctx, videoID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		out = append(out, s.Text)
	}
	return out, nil
}

// Transcript loads the transcript of videoID in the first configured
// language that has one.
func (c *Client) Transcript(ctx context.Context, videoID string) ([]Segment, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("empty video id")
	}

	video, err := c.api.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnplayable, err)
	}

	var errs []error
	for _, lang := range c.languages {
		transcript, err := c.api.GetTranscriptCtx(ctx, video, lang)
		if errors.Is(err, yt.ErrTranscriptDisabled) {
			return nil, ErrNoCaptions
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lang, err))
			continue
		}
		if segments := toSegments(transcript); len(segments) > 0 {
			return segments, nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoCaptions, errors.Join(errs...))
	}
	return nil, ErrNoCaptions
}

func toSegments(transcript yt.VideoTranscript) []Segment {
	segments := make([]Segment, 0, len(transcript))
	for _, seg := range transcript {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			Start:    time.Duration(seg.StartMs) * time.Millisecond,
			Duration: time.Duration(seg.Duration) * time.Millisecond,
		})
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return segments
}
