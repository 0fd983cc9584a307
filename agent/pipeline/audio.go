package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
)

const (
	audioPipeline = "audio_tool"
	sourceAudio   = "audio recording"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Audio summarizes audio files. Transcription has a single strategy.
type Audio struct {
	transcriber Transcriber
	summarizer  contractx.Summarizer
}

var _ contractx.Pipeline = (*Audio)(nil)

func NewAudio(transcriber Transcriber, summarizer contractx.Summarizer) *Audio {
	return &Audio{transcriber: transcriber, summarizer: summarizer}
}

func (a *Audio) Acquire(ctx context.Context, path string) contractx.Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return contractx.Fail("No audio file was provided.")
	}
	if a.transcriber == nil {
		return contractx.Fail("**GROQ_API_KEY** is missing or invalid. Audio transcription cannot proceed.")
	}
	if a.summarizer == nil {
		return contractx.Fail("Summarizer is not configured.")
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return contractx.Failf("Audio file not found: %s", path)
	}

	whisper := Strategy{Name: "whisper", Label: "Whisper", Run: a.transcriber.Transcribe}
	text, _, err := newChain(audioPipeline, whisper).run(ctx, path)
	if err != nil {
		last := lastError(err)
		if errors.Is(last, contractx.ErrEmptyExtraction) {
			return contractx.Fail("Whisper returned an empty transcription. The audio may be silent or corrupted.")
		}
		return contractx.Failf(
			"Audio transcription failed: %v.\nSuggestions:\n"+
				"• Use a valid MP3, WAV or M4A file\n"+
				"• Keep the file under 25 MB\n"+
				"• Check that GROQ_API_KEY is valid",
			last,
		)
	}

	return finalize(a.summarizer.Summarize(ctx, text, sourceAudio))
}
