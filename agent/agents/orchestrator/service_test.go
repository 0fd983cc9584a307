package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	toolx "github.com/tanpawarit/omega-summarizer/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	errs      []error
	repeat    *schema.Message
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	idx := len(f.inputs)
	f.inputs = append(f.inputs, append([]*schema.Message(nil), input...))
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if f.repeat != nil {
		return f.repeat, nil
	}
	if idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	return f.responses[idx], nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

type fakeProvider struct {
	model   *fakeToolCallingModel
	err     error
	modelID string
}

func (f *fakeProvider) DecisionModel(ctx context.Context, modelID string) (einomodel.ToolCallingChatModel, error) {
	f.modelID = modelID
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

type fakePipeline struct {
	res  contractx.Result
	refs []string
}

func (f *fakePipeline) Acquire(ctx context.Context, ref string) contractx.Result {
	f.refs = append(f.refs, ref)
	return f.res
}

type fixture struct {
	model   *fakeToolCallingModel
	article *fakePipeline
	youtube *fakePipeline
	audio   *fakePipeline
	o       *Orchestrator
}

func newFixture(t *testing.T, model *fakeToolCallingModel) *fixture {
	t.Helper()

	f := &fixture{
		model:   model,
		article: &fakePipeline{res: contractx.OK("ARTICLE SUMMARY")},
		youtube: &fakePipeline{res: contractx.OK("VIDEO SUMMARY")},
		audio:   &fakePipeline{res: contractx.OK("AUDIO SUMMARY")},
	}
	catalog := toolx.NewCatalog(toolx.Pipelines{Article: f.article, YouTube: f.youtube, Audio: f.audio})

	o, err := New(&fakeProvider{model: model}, catalog, Config{SystemPrompt: "route the request"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.o = o
	return f
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}
}

func toolCallMessage(calls ...schema.ToolCall) *schema.Message {
	msg := schema.AssistantMessage("", calls)
	msg.ResponseMeta = &schema.ResponseMeta{FinishReason: "tool_calls"}
	return msg
}

func stopMessage(content string) *schema.Message {
	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{FinishReason: "stop"}
	return msg
}

func toolMessages(msgs []*schema.Message) []*schema.Message {
	var out []*schema.Message
	for _, m := range msgs {
		if m.Role == schema.Tool {
			out = append(out, m)
		}
	}
	return out
}

func TestNewValidatesDependencies(t *testing.T) {
	t.Parallel()

	catalog := toolx.NewCatalog(toolx.Pipelines{})
	if _, err := New(nil, catalog, Config{SystemPrompt: "x"}); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := New(&fakeProvider{}, nil, Config{SystemPrompt: "x"}); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := New(&fakeProvider{}, catalog, Config{}); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
}

func TestRunReturnsToolOutputVerbatim(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "article_tool", `{"url":"https://example.com/post"}`)),
		stopMessage("Here is a paraphrase of the summary."),
	}})

	log := execlogx.New()
	res := f.o.Run(execlogx.WithLog(context.Background(), log), "Please summarize: https://example.com/post", "llama-3.3-70b-versatile")
	if !res.IsOK() || res.Text() != "ARTICLE SUMMARY" {
		t.Fatalf("Run() = %s, want tool output", res)
	}
	if len(f.article.refs) != 1 || f.article.refs[0] != "https://example.com/post" {
		t.Fatalf("article refs = %v", f.article.refs)
	}
	if len(f.model.tools) != 3 {
		t.Fatalf("bound %d tools, want 3", len(f.model.tools))
	}

	second := f.model.inputs[1]
	if second[0].Role != schema.System || second[1].Role != schema.User {
		t.Fatal("conversation must start with system and user messages")
	}
	tools := toolMessages(second)
	if len(tools) != 1 || tools[0].Content != ToolAcknowledgement || tools[0].ToolCallID != "call_1" {
		t.Fatalf("unexpected tool reconciliation: %+v", tools)
	}
	if len(log.Entries()) == 0 {
		t.Fatal("run not logged")
	}
}

func TestRunDispatchesOnlyFirstToolInResponse(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(
			toolCall("call_1", "youtube_tool", `{"url":"https://youtu.be/abc12345678"}`),
			toolCall("call_2", "youtube_tool", `{"url":"https://youtu.be/abc12345678"}`),
			toolCall("call_3", "article_tool", `{"url":"https://example.com"}`),
		),
		stopMessage("done"),
	}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.Text() != "VIDEO SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
	if len(f.youtube.refs) != 1 || len(f.article.refs) != 0 {
		t.Fatalf("pipelines ran youtube=%d article=%d, want 1 and 0", len(f.youtube.refs), len(f.article.refs))
	}

	tools := toolMessages(f.model.inputs[1])
	if len(tools) != 3 {
		t.Fatalf("expected a reply per tool call, got %d", len(tools))
	}
	for _, m := range tools[1:] {
		if m.Content != ToolAlreadyExecuted {
			t.Fatalf("extra call %s got %q", m.ToolCallID, m.Content)
		}
	}
}

func TestRunSkipsToolCallInLaterIteration(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "audio_tool", `{"file_path":"/tmp/a.wav"}`)),
		toolCallMessage(toolCall("call_2", "article_tool", `{"url":"https://example.com"}`)),
		stopMessage(""),
	}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.Text() != "AUDIO SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
	if len(f.audio.refs) != 1 || len(f.article.refs) != 0 {
		t.Fatal("second tool must not be dispatched")
	}
}

func TestRunUnknownToolDoesNotConsumeSlot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "weather_tool", `{}`)),
		toolCallMessage(toolCall("call_2", "article_tool", `{"url":"https://example.com"}`)),
		stopMessage("ok"),
	}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.Text() != "ARTICLE SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
	tools := toolMessages(f.model.inputs[1])
	if len(tools) != 1 || !strings.Contains(tools[0].Content, "Unknown tool: weather_tool") {
		t.Fatalf("unexpected reconciliation: %+v", tools)
	}
}

func TestRunStopsAfterMaxIterations(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		repeat: toolCallMessage(toolCall("call_x", "article_tool", `{"url":"https://example.com"}`)),
	}
	f := newFixture(t, model)
	f.article.res = contractx.Fail("Article scraping failed with all strategies: timeout.")

	res := f.o.Run(context.Background(), "summarize", "m")
	if len(model.inputs) != MaxIterations {
		t.Fatalf("model calls = %d, want %d", len(model.inputs), MaxIterations)
	}
	if res.IsOK() || res.Text() != msgSafetyLimit {
		t.Fatalf("Run() = %s, want safety limit", res)
	}
	if len(f.article.refs) != 1 {
		t.Fatalf("article ran %d times, want 1", len(f.article.refs))
	}
}

func TestRunExhaustionPrefersSuccessfulTool(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		repeat: toolCallMessage(toolCall("call_x", "article_tool", `{"url":"https://example.com"}`)),
	}
	f := newFixture(t, model)

	res := f.o.Run(context.Background(), "summarize", "m")
	if !res.IsOK() || res.Text() != "ARTICLE SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
}

func TestRunModelErrorAfterSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolCall("call_1", "article_tool", `{"url":"https://example.com"}`)),
		},
		errs: []error{nil, errors.New("rate limited")},
	})

	res := f.o.Run(context.Background(), "summarize", "m")
	if !res.IsOK() || res.Text() != "ARTICLE SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
}

func TestRunModelErrorWithoutResult(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{errs: []error{errors.New("invalid api key")}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.IsOK() {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(res.Text(), "orchestrator model call failed") || !strings.Contains(res.Text(), "invalid api key") {
		t.Fatalf("unexpected diagnostic: %q", res.Text())
	}
}

func TestRunProviderFailure(t *testing.T) {
	t.Parallel()

	catalog := toolx.NewCatalog(toolx.Pipelines{})
	provider := &fakeProvider{err: contractx.ErrConfig}
	o, err := New(provider, catalog, Config{SystemPrompt: "x"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := o.Run(context.Background(), "summarize", "llama-3.1-8b-instant")
	if res.IsOK() || !strings.HasPrefix(res.Text(), "orchestrator model call failed") {
		t.Fatalf("Run() = %s", res)
	}
	if provider.modelID != "llama-3.1-8b-instant" {
		t.Fatalf("model id = %q", provider.modelID)
	}
}

func TestRunMalformedArgumentsBecomeEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "article_tool", `{"url": "https://exa`)),
		stopMessage(""),
	}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.IsOK() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Text(), "missing required argument url") {
		t.Fatalf("unexpected diagnostic: %q", res.Text())
	}
	if len(f.article.refs) != 0 {
		t.Fatal("pipeline ran without arguments")
	}
}

func TestRunTruncatesFailedReconciliation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "article_tool", `{"url":"https://example.com"}`)),
		stopMessage("Sorry, that failed."),
	}})
	f.article.res = contractx.Fail(strings.Repeat("ข", 1200))

	res := f.o.Run(context.Background(), "summarize", "m")
	if !res.IsOK() || res.Text() != "Sorry, that failed." {
		t.Fatalf("Run() = %s, want model text", res)
	}

	tools := toolMessages(f.model.inputs[1])
	if n := utf8.RuneCountInString(tools[0].Content); n != reconciliationLimit {
		t.Fatalf("reconciliation has %d chars, want %d", n, reconciliationLimit)
	}
	if !strings.HasPrefix(tools[0].Content, contractx.FailureMarker) {
		t.Fatal("reconciliation must carry the failure marker")
	}
}

func TestRunTerminalPreferenceOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		final  *schema.Message
		tool   bool
		wantOK bool
		want   string
	}{
		{name: "model text", final: stopMessage("  plain answer "), wantOK: true, want: "plain answer"},
		{name: "no response", final: stopMessage("  "), want: msgNoResponse},
		{name: "marked text fails", final: stopMessage("❌ could not do it"), want: "could not do it"},
		{name: "failed tool beats generic", final: stopMessage(""), tool: true, want: "Article scraping failed with all strategies: dns."},
		{
			name: "anomaly",
			final: func() *schema.Message {
				m := schema.AssistantMessage("", nil)
				m.ResponseMeta = &schema.ResponseMeta{FinishReason: "length"}
				return m
			}(),
			want: msgUnexpected,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var responses []*schema.Message
			if tt.tool {
				responses = append(responses, toolCallMessage(toolCall("call_1", "article_tool", `{"url":"https://example.com"}`)))
			}
			responses = append(responses, tt.final)

			f := newFixture(t, &fakeToolCallingModel{responses: responses})
			f.article.res = contractx.Fail("Article scraping failed with all strategies: dns.")

			res := f.o.Run(context.Background(), "summarize", "m")
			if res.IsOK() != tt.wantOK || res.Text() != tt.want {
				t.Fatalf("Run() = ok=%v %q, want ok=%v %q", res.IsOK(), res.Text(), tt.wantOK, tt.want)
			}
		})
	}
}

func TestRunAnomalyPrefersSuccessfulTool(t *testing.T) {
	t.Parallel()

	anomaly := schema.AssistantMessage("truncated paraphr", nil)
	anomaly.ResponseMeta = &schema.ResponseMeta{FinishReason: "length"}

	f := newFixture(t, &fakeToolCallingModel{responses: []*schema.Message{
		toolCallMessage(toolCall("call_1", "youtube_tool", `{"url":"https://youtu.be/abc12345678"}`)),
		anomaly,
	}})

	res := f.o.Run(context.Background(), "summarize", "m")
	if res.Text() != "VIDEO SUMMARY" {
		t.Fatalf("Run() = %s", res)
	}
}
