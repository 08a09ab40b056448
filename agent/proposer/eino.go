// Package proposer turns a conversation into a model proposal: a text reply or
// a single tool call.
package proposer

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	promptx "github.com/tanpawarit/hitl-purchase-agent/agent/prompt"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

const historyKey = "history"

var _ contractx.Proposer = (*EinoProposer)(nil)

type EinoProposer struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func NewEino(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string) (*EinoProposer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrValidation)
	}
	if err := promptx.CheckFString(systemPrompt); err != nil {
		return nil, fmt.Errorf("system prompt: %w", err)
	}

	toolModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind purchasing tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileProposeGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile propose graph: %v", contractx.ErrModelInvoke, err)
	}
	return &EinoProposer{runner: runner}, nil
}

func (p *EinoProposer) ProposeAction(ctx context.Context, conv []contractx.ChatMessage) (contractx.Proposal, error) {
	history, err := toSchemaMessages(conv)
	if err != nil {
		return contractx.Proposal{}, err
	}

	msg, err := p.runner.Invoke(ctx, map[string]any{historyKey: history})
	if err != nil {
		return contractx.Proposal{}, fmt.Errorf("%w: propose invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.Proposal{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return proposalFrom(msg.Content, call.Function.Name, call.Function.Arguments, true)
	}
	return proposalFrom(msg.Content, "", "", false)
}

func compileProposeGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder(historyKey, false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add propose prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add propose model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add propose edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add propose edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add propose edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("proposer.propose_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile propose graph: %w", err)
	}
	return runner, nil
}
