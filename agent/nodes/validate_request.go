// Package nodes holds the interpreter graph steps. Each node takes the shared
// GraphState and either enriches it or produces the turn's Interpretation.
package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

type GraphInput struct {
	CallerID     string
	Conversation []contractx.ChatMessage
}

type GraphState struct {
	CallerID     string
	Conversation []contractx.ChatMessage

	Proposal contractx.Proposal
	// Args is the decoded tool-call argument object; never nil once a tool
	// call was proposed.
	Args map[string]any
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	if len(in.Conversation) == 0 {
		return nil, fmt.Errorf("%w: conversation is empty", contractx.ErrValidation)
	}
	for i, m := range in.Conversation {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("%w: message %d has role=%q", contractx.ErrValidation, i, m.Role)
		}
	}

	return &GraphState{
		CallerID:     strings.TrimSpace(in.CallerID),
		Conversation: in.Conversation,
	}, nil
}
