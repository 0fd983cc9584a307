// Package speech transcribes audio files through an OpenAI-compatible
// transcription endpoint (Groq Whisper by default).
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
)

type Client struct {
	sdk   *openai.Client
	model string
}

func NewClient(sdk *openai.Client, model string) (*Client, error) {
	if sdk == nil {
		return nil, errors.New("speech: openai client is nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("speech: model is required")
	}
	return &Client{sdk: sdk, model: model}, nil
}

// Transcribe uploads the file at path and returns the transcribed text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	resp, err := c.sdk.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           f,
		Model:          openai.AudioModel(c.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
