package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	promptx "github.com/tanpawarit/omega-summarizer/agent/prompt"
)

const (
	logSource      = "summarizer"
	defaultTimeout = 90 * time.Second
)

// Adapter wraps the summarization model. It also answers multimodal video
// analysis prompts, which feed back into Summarize.
type Adapter struct {
	summarizeRunner compose.Runnable[map[string]any, *schema.Message]
	analysisRunner  compose.Runnable[map[string]any, *schema.Message]
	timeout         time.Duration
	unavailable     error
}

var _ contractx.Summarizer = (*Adapter)(nil)

type Option func(*Adapter)

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, prompts promptx.PromptSet, opts ...Option) (*Adapter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: summarization model is nil", contractx.ErrValidation)
	}

	summarizeRunner, err := compileTemplateGraph(ctx, chatModel, prompts.Summarize, "summarize.summary_graph")
	if err != nil {
		return nil, err
	}
	analysisRunner, err := compileTemplateGraph(ctx, chatModel, prompts.VideoAnalysis, "summarize.video_analysis_graph")
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		summarizeRunner: summarizeRunner,
		analysisRunner:  analysisRunner,
		timeout:         defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Unavailable returns an adapter that fails every call with cause, used when
// the summarization credentials are not configured.
func Unavailable(cause error) *Adapter {
	return &Adapter{unavailable: cause, timeout: defaultTimeout}
}

func (a *Adapter) Summarize(ctx context.Context, text string, sourceType string) contractx.Result {
	elog := execlogx.FromContext(ctx)
	if a.unavailable != nil {
		elog.Error(logSource, a.unavailable.Error())
		return contractx.Fail("**GOOGLE_API_KEY** is missing or invalid. Summarization cannot proceed.")
	}

	elog.Working(logSource, fmt.Sprintf("Summarizing %s (%d chars)", sourceType, len(text)))
	out, err := a.invoke(ctx, a.summarizeRunner, map[string]any{
		"source_type": sourceType,
		"content":     text,
	})
	if err != nil {
		elog.Error(logSource, err.Error())
		return contractx.Failf("Gemini summarization failed: %v", err)
	}

	elog.Success(logSource, "Summary generated")
	return contractx.OK(out)
}

// Analyze asks the model to describe the video at url.
func (a *Adapter) Analyze(ctx context.Context, url string) (string, error) {
	if a.unavailable != nil {
		return "", a.unavailable
	}
	return a.invoke(ctx, a.analysisRunner, map[string]any{"url": url})
}

func (a *Adapter) invoke(ctx context.Context, runner compose.Runnable[map[string]any, *schema.Message], vars map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := runner.Invoke(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrUpstream, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: model returned an empty response", contractx.ErrUpstream)
	}
	return strings.TrimSpace(msg.Content), nil
}

func compileTemplateGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	userTemplate string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.UserMessage(userTemplate),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add %s prompt node: %w", graphName, err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add %s model node: %w", graphName, err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add %s edge start->prompt: %w", graphName, err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add %s edge prompt->model: %w", graphName, err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add %s edge model->end: %w", graphName, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}
