package proposer

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	llmx "github.com/tanpawarit/hitl-purchase-agent/agent/llm"
	promptx "github.com/tanpawarit/hitl-purchase-agent/agent/prompt"
	openaicompatx "github.com/tanpawarit/hitl-purchase-agent/pkg/openaicompat"
)

// New builds the proposer selected by cfg.Backend.
func New(ctx context.Context, cfg llmx.Config) (contractx.Proposer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	provider := cfg.Provider()
	switch cfg.Backend {
	case llmx.BackendOpenAI:
		p, err := NewOpenAI(openaicompatx.NewClient(provider), OpenAIOptions{
			Model:        provider.Model,
			SystemPrompt: prompts.Purchasing,
			Temperature:  provider.Temperature,
			MaxTokens:    cfg.MaxCompletionToken,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		chatModel, err := provider.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create chat model: %v", contractx.ErrModelInvoke, err)
		}
		p, err := NewEino(ctx, chatModel, prompts.Purchasing)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
