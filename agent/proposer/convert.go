package proposer

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

func toSchemaMessages(conv []contractx.ChatMessage) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(conv))
	for i, m := range conv {
		switch m.Role {
		case contractx.RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case contractx.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			return nil, fmt.Errorf("%w: message %d has role=%q", contractx.ErrValidation, i, m.Role)
		}
	}
	return out, nil
}

// proposalFrom keeps only the first tool call; a turn proposes at most one action.
func proposalFrom(content string, name string, arguments string, hasCall bool) (contractx.Proposal, error) {
	if hasCall {
		tool := strings.TrimSpace(name)
		if tool == "" {
			return contractx.Proposal{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		return contractx.Proposal{
			Call: &contractx.ToolCall{
				Name:         contractx.ToolName(tool),
				RawArguments: arguments,
			},
		}, nil
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return contractx.Proposal{}, fmt.Errorf("%w: model returned neither text nor tool call", contractx.ErrSchemaViolation)
	}
	return contractx.Proposal{Text: text}, nil
}
