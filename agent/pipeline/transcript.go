package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
)

const transcriptPipeline = "youtube_tool"

const (
	sourceTranscript = "YouTube video transcript"
	sourceAnalyzed   = "YouTube video (AI-analyzed)"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/v/|youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`shorts/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character video id of a YouTube URL, or ""
// when no known URL shape matches.
func ExtractVideoID(url string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// CaptionSource returns the caption texts of a video in timeline order.
type CaptionSource interface {
	Captions(ctx context.Context, videoID string) ([]string, error)
}

// VideoAnalyzer describes a video from its URL with a multimodal model.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, url string) (string, error)
}

// Transcript summarizes YouTube videos from captions, falling back to model
// analysis of the video itself.
type Transcript struct {
	captions   CaptionSource
	analyzer   VideoAnalyzer
	summarizer contractx.Summarizer
}

var _ contractx.Pipeline = (*Transcript)(nil)

func NewTranscript(captions CaptionSource, analyzer VideoAnalyzer, summarizer contractx.Summarizer) *Transcript {
	return &Transcript{
		captions:   captions,
		analyzer:   analyzer,
		summarizer: summarizer,
	}
}

func (p *Transcript) Acquire(ctx context.Context, url string) contractx.Result {
	url = strings.TrimSpace(url)
	videoID := ExtractVideoID(url)
	if videoID == "" {
		return contractx.Fail("Could not extract a valid video ID from the URL. Please provide a full YouTube link.")
	}
	if p.summarizer == nil {
		return contractx.Fail("Summarizer is not configured.")
	}

	captions := Strategy{
		Name:  "captions",
		Label: "Captions",
		Run: func(ctx context.Context, _ string) (string, error) {
			if p.captions == nil {
				return "", fmt.Errorf("%w: caption source is not configured", contractx.ErrConfig)
			}
			texts, err := p.captions.Captions(ctx, videoID)
			if err != nil {
				return "", err
			}
			return strings.Join(texts, " "), nil
		},
	}
	analysis := Strategy{
		Name:  "video_analysis",
		Label: "Video Analysis",
		Run: func(ctx context.Context, url string) (string, error) {
			if p.analyzer == nil {
				return "", fmt.Errorf("%w: video analyzer is not configured", contractx.ErrConfig)
			}
			return p.analyzer.Analyze(ctx, url)
		},
	}

	content, strategy, err := newChain(transcriptPipeline, captions, analysis).run(ctx, url)
	if err != nil {
		return contractx.Failf(
			"Could not retrieve transcript or analyze video: %s.\nSuggestions:\n"+
				"• Make sure the video is public and has captions enabled\n"+
				"• Try again with the full video URL\n"+
				"• Upload the audio track instead",
			joinErrors(attemptErrors(err)),
		)
	}

	sourceType := sourceTranscript
	if strategy.Name == analysis.Name {
		sourceType = sourceAnalyzed
	}
	return finalize(p.summarizer.Summarize(ctx, content, sourceType))
}

func joinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
