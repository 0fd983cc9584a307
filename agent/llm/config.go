package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	openaicompatx "github.com/tanpawarit/omega-summarizer/pkg/openaicompat"
)

const placeholderPrefix = "your_"

// DecisionModels are the orchestrator models offered to users, default first.
var DecisionModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"llama3-70b-8192",
}

type Config struct {
	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`

	GoogleAPIKey  string `envconfig:"GOOGLE_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	WhisperModel string `envconfig:"WHISPER_MODEL" default:"whisper-large-v3-turbo"`

	DecisionMaxTokens int           `envconfig:"DECISION_MAX_TOKENS" default:"4096"`
	Timeout           time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

// IsPlaceholder reports whether a credential is unset or still the template value.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(v, placeholderPrefix)
}

func (c Config) ValidateGroq() error {
	if IsPlaceholder(c.GroqAPIKey) {
		return fmt.Errorf("%w: GROQ_API_KEY is not set", contractx.ErrConfig)
	}
	return nil
}

func (c Config) ValidateGoogle() error {
	if IsPlaceholder(c.GoogleAPIKey) {
		return fmt.Errorf("%w: GOOGLE_API_KEY is missing or invalid", contractx.ErrConfig)
	}
	return nil
}

// DefaultDecisionModel is used when a request names no model.
func (c Config) DefaultDecisionModel() string {
	return DecisionModels[0]
}

func (c Config) DecisionEndpoint(modelID string) (openaicompatx.Config, error) {
	if err := c.ValidateGroq(); err != nil {
		return openaicompatx.Config{}, err
	}
	modelName := strings.TrimSpace(modelID)
	if modelName == "" {
		modelName = c.DefaultDecisionModel()
	}
	maxTokens := c.DecisionMaxTokens
	return openaicompatx.Config{
		BaseURL:            strings.TrimSpace(c.GroqBaseURL),
		APIKey:             strings.TrimSpace(c.GroqAPIKey),
		Model:              modelName,
		MaxCompletionToken: &maxTokens,
		Timeout:            c.Timeout,
	}, nil
}

func (c Config) SummarizationEndpoint() (openaicompatx.Config, error) {
	if err := c.ValidateGoogle(); err != nil {
		return openaicompatx.Config{}, err
	}
	return openaicompatx.Config{
		BaseURL: strings.TrimSpace(c.GeminiBaseURL),
		APIKey:  strings.TrimSpace(c.GoogleAPIKey),
		Model:   strings.TrimSpace(c.GeminiModel),
		Timeout: c.Timeout,
	}, nil
}

func (c Config) TranscriptionEndpoint() (openaicompatx.Config, error) {
	if err := c.ValidateGroq(); err != nil {
		return openaicompatx.Config{}, err
	}
	return openaicompatx.Config{
		BaseURL: strings.TrimSpace(c.GroqBaseURL),
		APIKey:  strings.TrimSpace(c.GroqAPIKey),
		Model:   strings.TrimSpace(c.WhisperModel),
		Timeout: c.Timeout,
	}, nil
}

// Provider builds decision models per request, since the model is user-selected.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) DecisionModel(ctx context.Context, modelID string) (model.ToolCallingChatModel, error) {
	endpoint, err := p.cfg.DecisionEndpoint(modelID)
	if err != nil {
		return nil, err
	}
	m, err := endpoint.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	return m, nil
}
