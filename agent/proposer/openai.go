package proposer

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

var _ contractx.Proposer = (*OpenAIProposer)(nil)

// OpenAIProposer calls chat completions directly, without the eino graph.
type OpenAIProposer struct {
	client       *openai.Client
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
	tools        []openai.ChatCompletionToolParam
}

type OpenAIOptions struct {
	Model        string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

func NewOpenAI(client *openai.Client, opts OpenAIOptions) (*OpenAIProposer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is nil", contractx.ErrValidation)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}

	defs := toolx.Definitions()
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        string(d.Name),
				Description: openai.String(d.Desc),
				Parameters:  openai.FunctionParameters(d.JSONSchema()),
			},
		})
	}

	return &OpenAIProposer{
		client:       client,
		model:        model,
		systemPrompt: opts.SystemPrompt,
		temperature:  float64(opts.Temperature),
		maxTokens:    opts.MaxTokens,
		tools:        tools,
	}, nil
}

func (p *OpenAIProposer) ProposeAction(ctx context.Context, conv []contractx.ChatMessage) (contractx.Proposal, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv)+1)
	messages = append(messages, openai.SystemMessage(p.systemPrompt))
	for i, m := range conv {
		switch m.Role {
		case contractx.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			return contractx.Proposal{}, fmt.Errorf("%w: message %d has role=%q", contractx.ErrValidation, i, m.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		Tools:       p.tools,
		Temperature: openai.Float(p.temperature),
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.Proposal{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return contractx.Proposal{}, fmt.Errorf("%w: chat completion returned no choices", contractx.ErrSchemaViolation)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return proposalFrom(msg.Content, call.Function.Name, call.Function.Arguments, true)
	}
	return proposalFrom(msg.Content, "", "", false)
}
