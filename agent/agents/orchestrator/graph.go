package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	nodex "github.com/tanpawarit/travel-agent-mesh/agent/nodes/orchestrator"
)

const (
	nodeValidateTrip     = "validate_trip"
	nodeFanOut           = "fan_out"
	nodeJoinCalls        = "join_calls"
	nodeBuildPlan        = "build_plan"
	nodeSynthesize       = "synthesize_narrative"
	nodeFallback         = "fallback_narrative"
	nodeFinalizeSynth    = "finalize_synthesized"
	nodeFinalizeFallback = "finalize_fallback"
)

func (o *Orchestrator) compilePlanTripGraph(ctx context.Context) (compose.Runnable[nodex.TripRequest, nodex.TravelPlan], error) {
	graph := compose.NewGraph[nodex.TripRequest, nodex.TravelPlan]()

	if err := graph.AddLambdaNode(nodeValidateTrip,
		compose.InvokableLambda(func(ctx context.Context, in nodex.TripRequest) (*nodex.PlanState, error) {
			return nodex.ValidateTrip(in, o.now, o.newID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateTrip, err)
	}

	if err := graph.AddLambdaNode(nodeFanOut,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (*nodex.PlanState, error) {
			return nodex.FanOut(ctx, in, nodex.Agents{Flight: o.flight, Hotel: o.hotel}, o.callTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFanOut, err)
	}

	if err := graph.AddLambdaNode(nodeJoinCalls,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (*nodex.PlanState, error) {
			return nodex.JoinCalls(ctx, in, o.policy)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeJoinCalls, err)
	}

	if err := graph.AddLambdaNode(nodeBuildPlan,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (*nodex.PlanState, error) {
			return nodex.BuildPlan(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeBuildPlan, err)
	}

	if err := graph.AddLambdaNode(nodeSynthesize,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (*nodex.PlanState, error) {
			return nodex.Synthesize(ctx, in, o.generator, o.prompts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeSynthesize, err)
	}

	if err := graph.AddLambdaNode(nodeFallback,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (*nodex.PlanState, error) {
			return nodex.Fallback(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFallback, err)
	}

	for _, name := range []string{nodeFinalizeSynth, nodeFinalizeFallback} {
		if err := graph.AddLambdaNode(name,
			compose.InvokableLambda(func(ctx context.Context, in *nodex.PlanState) (nodex.TravelPlan, error) {
				return nodex.FinalizePlan(in)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.PlanState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: plan state is nil", contractx.ErrValidation)
			}
			if o.generator == nil {
				return nodeFallback, nil
			}
			return nodeSynthesize, nil
		},
		map[string]bool{
			nodeSynthesize: true,
			nodeFallback:   true,
		},
	)
	if err := graph.AddBranch(nodeBuildPlan, branch); err != nil {
		return nil, fmt.Errorf("add branch %s: %w", nodeBuildPlan, err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateTrip},
		{nodeValidateTrip, nodeFanOut},
		{nodeFanOut, nodeJoinCalls},
		{nodeJoinCalls, nodeBuildPlan},
		{nodeSynthesize, nodeFinalizeSynth},
		{nodeFallback, nodeFinalizeFallback},
		{nodeFinalizeSynth, compose.END},
		{nodeFinalizeFallback, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.plan_trip"))
	if err != nil {
		return nil, fmt.Errorf("compile plan trip graph: %w", err)
	}
	return runner, nil
}
