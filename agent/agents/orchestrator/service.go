// Package orchestrator runs the bounded tool-calling loop that routes a user
// request to exactly one acquisition pipeline.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	toolx "github.com/tanpawarit/omega-summarizer/agent/tool"
	metricsx "github.com/tanpawarit/omega-summarizer/pkg/metrics"
)

const (
	MaxIterations          = 3
	DefaultDecisionTimeout = 60 * time.Second
	DefaultMaxTokens       = 4096

	// reconciliationLimit bounds a failed tool result echoed back to the model.
	reconciliationLimit = 500

	logSource = "orchestrator"
)

// Fixed replies sent back to the decision model as tool messages.
const (
	ToolAcknowledgement = "Tool executed successfully. The summary has been generated and will be shown to the user as-is. Reply with a short confirmation."
	ToolAlreadyExecuted = "A tool has already been executed for this request. No further tools will run. Reply with a short confirmation."
)

const (
	msgSafetyLimit = "Agent loop hit the safety limit. Please try again."
	msgNoResponse  = "No response generated."
	msgUnexpected  = "Unexpected response from the orchestrator."
)

// ModelProvider builds the decision model for a model id.
type ModelProvider interface {
	DecisionModel(ctx context.Context, modelID string) (einomodel.ToolCallingChatModel, error)
}

// Registry is the tool surface the orchestrator offers and dispatches to.
type Registry interface {
	contractx.Dispatcher
	Infos() []*schema.ToolInfo
	Lookup(name string) (toolx.Name, bool)
}

type Config struct {
	SystemPrompt    string
	DecisionTimeout time.Duration
	MaxTokens       int
}

type Orchestrator struct {
	models ModelProvider
	tools  Registry

	systemPrompt    string
	decisionTimeout time.Duration
	maxTokens       int
}

func New(models ModelProvider, tools Registry, cfg Config) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("model provider is required")
	}
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return nil, errors.New("system prompt is required")
	}

	timeout := cfg.DecisionTimeout
	if timeout <= 0 {
		timeout = DefaultDecisionTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Orchestrator{
		models:          models,
		tools:           tools,
		systemPrompt:    cfg.SystemPrompt,
		decisionTimeout: timeout,
		maxTokens:       maxTokens,
	}, nil
}

type runState struct {
	messages   []*schema.Message
	last       *contractx.Result
	executed   bool
	iterations int
}

// preferTool returns the last tool result when it succeeded, else fallback.
func (st *runState) preferTool(fallback contractx.Result) contractx.Result {
	if st.last != nil && st.last.IsOK() {
		return *st.last
	}
	return fallback
}

// terminal resolves a final answer: successful tool output, then model text,
// then the failed tool output, then generic.
func (st *runState) terminal(content string, generic string) contractx.Result {
	if st.last != nil && st.last.IsOK() {
		return *st.last
	}
	if text := strings.TrimSpace(content); text != "" {
		return contractx.OK(text)
	}
	if st.last != nil {
		return *st.last
	}
	return contractx.Fail(generic)
}

// Run drives the decision model until it answers, fails or hits the
// iteration limit. It always returns a Result.
func (o *Orchestrator) Run(ctx context.Context, userInput string, modelID string) contractx.Result {
	st := &runState{}
	res := o.run(ctx, st, userInput, modelID)

	metricsx.Runs.WithLabelValues(metricsx.Outcome(res.IsOK())).Inc()
	metricsx.RunIterations.Observe(float64(st.iterations))
	return res
}

func (o *Orchestrator) run(ctx context.Context, st *runState, userInput string, modelID string) contractx.Result {
	elog := execlogx.FromContext(ctx)
	elog.Working(logSource, fmt.Sprintf("Planning with %s", modelID))

	runner, err := o.decisionRunner(ctx, modelID)
	if err != nil {
		elog.Error(logSource, err.Error())
		return contractx.Failf("orchestrator model call failed: %v", err)
	}

	st.messages = []*schema.Message{
		schema.SystemMessage(o.systemPrompt),
		schema.UserMessage(userInput),
	}

	for st.iterations < MaxIterations {
		st.iterations++

		msg, err := o.decide(ctx, runner, st.messages)
		if err != nil {
			elog.Error(logSource, fmt.Sprintf("Model call failed: %v", err))
			return st.preferTool(contractx.Failf("orchestrator model call failed: %v", err))
		}

		if len(msg.ToolCalls) > 0 {
			st.messages = append(st.messages, msg)
			for _, call := range msg.ToolCalls {
				st.messages = append(st.messages, o.handleToolCall(ctx, st, call))
			}
			continue
		}

		switch finish := finishReason(msg); finish {
		case "", "stop":
			elog.Success(logSource, "Run complete")
			return st.terminal(msg.Content, msgNoResponse)
		default:
			elog.Error(logSource, fmt.Errorf("%w: unexpected finish reason %q", contractx.ErrProtocol, finish).Error())
			return st.terminal(msg.Content, msgUnexpected)
		}
	}

	elog.Error(logSource, fmt.Sprintf("Reached %d iterations", MaxIterations))
	return st.preferTool(contractx.Fail(msgSafetyLimit))
}

func (o *Orchestrator) decisionRunner(ctx context.Context, modelID string) (decisionRunner, error) {
	chatModel, err := o.models.DecisionModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if chatModel == nil {
		return nil, fmt.Errorf("%w: decision model is nil", contractx.ErrConfig)
	}
	return compileDecisionGraph(ctx, chatModel, o.tools.Infos())
}

func (o *Orchestrator) decide(ctx context.Context, runner decisionRunner, messages []*schema.Message) (*schema.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, o.decisionTimeout)
	defer cancel()

	msg, err := runner.Invoke(ctx, messages,
		compose.WithChatModelOption(einomodel.WithMaxTokens(o.maxTokens)),
	)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return schema.AssistantMessage("", nil), nil
	}
	return msg, nil
}

// handleToolCall dispatches at most one pipeline per run. Later calls to a
// known tool are answered without running anything.
func (o *Orchestrator) handleToolCall(ctx context.Context, st *runState, call schema.ToolCall) *schema.Message {
	elog := execlogx.FromContext(ctx)
	name := strings.TrimSpace(call.Function.Name)

	if _, known := o.tools.Lookup(name); known && st.executed {
		elog.Error(logSource, fmt.Sprintf("Skipped extra tool call %s", name))
		return schema.ToolMessage(ToolAlreadyExecuted, call.ID)
	}

	args := parseArguments(ctx, name, call.Function.Arguments)
	elog.Working(logSource, fmt.Sprintf("Calling %s", name))

	res := o.tools.Dispatch(ctx, name, args)
	if _, known := o.tools.Lookup(name); known {
		st.executed = true
	}
	st.last = &res

	return schema.ToolMessage(reconciliation(res), call.ID)
}

func reconciliation(res contractx.Result) string {
	if res.IsOK() {
		return ToolAcknowledgement
	}
	return contractx.FirstRunes(res.String(), reconciliationLimit)
}

// parseArguments decodes the tool arguments. Malformed JSON degrades to an
// empty map so the tool reports the missing argument itself.
func parseArguments(ctx context.Context, tool string, raw string) map[string]any {
	args := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		err = fmt.Errorf("%w: malformed arguments for %s: %v", contractx.ErrProtocol, tool, err)
		execlogx.FromContext(ctx).Error(logSource, err.Error())
		return map[string]any{}
	}
	if args == nil {
		return map[string]any{}
	}
	return args
}

func finishReason(msg *schema.Message) string {
	if msg == nil || msg.ResponseMeta == nil {
		return ""
	}
	return strings.TrimSpace(msg.ResponseMeta.FinishReason)
}

