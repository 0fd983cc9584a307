package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	metricsx "github.com/tanpawarit/omega-summarizer/pkg/metrics"
)

// Name identifies a tool the decision model may call.
type Name string

const (
	ArticleTool Name = "article_tool"
	YouTubeTool Name = "youtube_tool"
	AudioTool   Name = "audio_tool"
)

const logSource = "registry"

type route struct {
	arg      string
	pipeline contractx.Pipeline
}

// Pipelines binds each tool to the pipeline that serves it.
type Pipelines struct {
	Article contractx.Pipeline
	YouTube contractx.Pipeline
	Audio   contractx.Pipeline
}

// Catalog is the fixed routing table from tool name to pipeline.
type Catalog struct {
	infos  []*schema.ToolInfo
	routes map[Name]route
}

var _ contractx.Dispatcher = (*Catalog)(nil)

func NewCatalog(p Pipelines) *Catalog {
	return &Catalog{
		infos: toolInfos(),
		routes: map[Name]route{
			ArticleTool: {arg: "url", pipeline: p.Article},
			YouTubeTool: {arg: "url", pipeline: p.YouTube},
			AudioTool:   {arg: "file_path", pipeline: p.Audio},
		},
	}
}

// Infos returns the tool descriptors offered to the decision model.
func (c *Catalog) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, len(c.infos))
	copy(out, c.infos)
	return out
}

// Lookup reports whether name is a known tool.
func (c *Catalog) Lookup(name string) (Name, bool) {
	_, ok := c.routes[Name(name)]
	return Name(name), ok
}

func (c *Catalog) Dispatch(ctx context.Context, name string, args map[string]any) contractx.Result {
	elog := execlogx.FromContext(ctx)

	rt, ok := c.routes[Name(name)]
	if !ok {
		elog.Error(logSource, fmt.Sprintf("Unknown tool requested: %s", name))
		metricsx.ToolCalls.WithLabelValues("unknown", metricsx.OutcomeFail).Inc()
		return contractx.Failf("Unknown tool: %s", name)
	}

	ref, err := stringArg(args, rt.arg)
	if err != nil {
		elog.Error(name, err.Error())
		metricsx.ToolCalls.WithLabelValues(name, metricsx.OutcomeFail).Inc()
		return contractx.Failf("%s: %v", name, err)
	}
	if rt.pipeline == nil {
		elog.Error(name, "pipeline is not configured")
		metricsx.ToolCalls.WithLabelValues(name, metricsx.OutcomeFail).Inc()
		return contractx.Failf("%s: pipeline is not configured", name)
	}

	elog.Working(name, fmt.Sprintf("Processing %s", ref))
	res := rt.pipeline.Acquire(ctx, ref)
	if res.IsOK() {
		elog.Success(name, "Summary ready")
	} else {
		elog.Error(name, res.Text())
	}
	metricsx.ToolCalls.WithLabelValues(name, metricsx.Outcome(res.IsOK())).Inc()
	return res
}

func toolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: string(ArticleTool),
			Desc: "Scrape and summarize a web article, blog post or news page.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"url": {Type: schema.String, Desc: "Full URL of the article", Required: true},
			}),
		},
		{
			Name: string(YouTubeTool),
			Desc: "Summarize a YouTube video from its transcript, or by analyzing the video when no transcript exists.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"url": {Type: schema.String, Desc: "YouTube video URL", Required: true},
			}),
		},
		{
			Name: string(AudioTool),
			Desc: "Transcribe and summarize an audio file or voice recording.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"file_path": {Type: schema.String, Desc: "Local path of the audio file", Required: true},
			}),
		},
	}
}
