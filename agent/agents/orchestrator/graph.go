package orchestrator

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

type decisionRunner = compose.Runnable[[]*schema.Message, *schema.Message]

// compileDecisionGraph binds the tool descriptors to the model and compiles
// the single-step decision graph used by every loop iteration.
func compileDecisionGraph(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	tools []*schema.ToolInfo,
) (decisionRunner, error) {
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("bind decision tools: %w", err)
	}

	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("decide", toolModel); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	edges := [][2]string{
		{compose.START, "decide"},
		{"decide", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.decide"))
	if err != nil {
		return nil, fmt.Errorf("compile decision graph: %w", err)
	}
	return runner, nil
}
