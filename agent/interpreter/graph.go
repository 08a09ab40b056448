package interpreter

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	nodex "github.com/tanpawarit/hitl-purchase-agent/agent/nodes"
)

func (s *Service) compileInterpretGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, contractx.Interpretation], error) {
	graph := compose.NewGraph[nodex.GraphInput, contractx.Interpretation]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeProposeAction,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ProposeAction(ctx, in, s.proposer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeProposeAction, err)
	}

	terminals := map[string]func(context.Context, *nodex.GraphState) (contractx.Interpretation, error){
		nodex.NodeReplyText: func(ctx context.Context, in *nodex.GraphState) (contractx.Interpretation, error) {
			return nodex.ReplyText(in)
		},
		nodex.NodeResolveCreate: func(ctx context.Context, in *nodex.GraphState) (contractx.Interpretation, error) {
			return nodex.ResolveCreate(ctx, in, s.resolver)
		},
		nodex.NodeListOrders: func(ctx context.Context, in *nodex.GraphState) (contractx.Interpretation, error) {
			return nodex.ListOrders(ctx, in, s.store)
		},
		nodex.NodeResolveDelete: func(ctx context.Context, in *nodex.GraphState) (contractx.Interpretation, error) {
			return nodex.ResolveDelete(ctx, in, s.store)
		},
		nodex.NodeUnknownTool: nodex.UnknownTool,
	}

	for name, fn := range terminals {
		if err := graph.AddLambdaNode(name, compose.InvokableLambda(fn)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
		if err := graph.AddEdge(name, compose.END); err != nil {
			return nil, fmt.Errorf("add edge %s->end: %w", name, err)
		}
	}

	if err := graph.AddBranch(nodex.NodeProposeAction, compose.NewGraphBranch(nodex.Route, nodex.RouteTargets())); err != nil {
		return nil, fmt.Errorf("add route branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeValidateRequest},
		{nodex.NodeValidateRequest, nodex.NodeProposeAction},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("interpreter.interpret"))
	if err != nil {
		return nil, fmt.Errorf("compile interpreter graph: %w", err)
	}
	return runner, nil
}
