package specialist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	taskx "github.com/tanpawarit/travel-agent-mesh/agent/task"
)

const (
	nodePlanCall    = "plan_call"
	nodeInvokeTool  = "invoke_tool"
	nodeFormatReply = "format_reply"
	nodeHelpReply   = "help_reply"
)

type skillInput struct {
	Intent contractx.Intent
	Text   string
}

// callPlan travels through the graph. Err carries a tool or argument failure
// so it reaches the task unchanged.
type callPlan struct {
	Tool string
	Args any
	Raw  json.RawMessage
	Err  error
}

type skillOutput struct {
	Result taskx.Result
	Err    error
}

func compileSkillGraph(ctx context.Context, s *Skill) (compose.Runnable[skillInput, *skillOutput], error) {
	graph := compose.NewGraph[skillInput, *skillOutput]()

	if err := graph.AddLambdaNode(nodePlanCall,
		compose.InvokableLambda(func(ctx context.Context, in skillInput) (*callPlan, error) {
			return s.planCall(in), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodePlanCall, err)
	}

	if err := graph.AddLambdaNode(nodeInvokeTool,
		compose.InvokableLambda(func(ctx context.Context, plan *callPlan) (*callPlan, error) {
			if plan.Err != nil {
				return plan, nil
			}
			plan.Raw, plan.Err = s.tools.CallTool(ctx, plan.Tool, plan.Args)
			return plan, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeInvokeTool, err)
	}

	if err := graph.AddLambdaNode(nodeFormatReply,
		compose.InvokableLambda(func(ctx context.Context, plan *callPlan) (*skillOutput, error) {
			if plan.Err != nil {
				return &skillOutput{Err: plan.Err}, nil
			}
			res, err := s.domain.summarize(plan.Tool, plan.Raw)
			return &skillOutput{Result: res, Err: err}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFormatReply, err)
	}

	if err := graph.AddLambdaNode(nodeHelpReply,
		compose.InvokableLambda(func(ctx context.Context, plan *callPlan) (*skillOutput, error) {
			return &skillOutput{Result: taskx.Result{Text: s.domain.help()}}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeHelpReply, err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, plan *callPlan) (string, error) {
			if plan == nil {
				return "", fmt.Errorf("%w: call plan is nil", contractx.ErrValidation)
			}
			if plan.Tool == "" && plan.Err == nil {
				return nodeHelpReply, nil
			}
			return nodeInvokeTool, nil
		},
		map[string]bool{
			nodeInvokeTool: true,
			nodeHelpReply:  true,
		},
	)
	if err := graph.AddBranch(nodePlanCall, branch); err != nil {
		return nil, fmt.Errorf("add branch %s: %w", nodePlanCall, err)
	}

	edges := [][2]string{
		{compose.START, nodePlanCall},
		{nodeInvokeTool, nodeFormatReply},
		{nodeFormatReply, compose.END},
		{nodeHelpReply, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist."+string(s.agent)+"_skill"))
	if err != nil {
		return nil, fmt.Errorf("compile %s skill graph: %w", s.agent, err)
	}
	return runner, nil
}
