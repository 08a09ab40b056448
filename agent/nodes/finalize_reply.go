package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

func ReplyText(in *GraphState) (contractx.Interpretation, error) {
	if in == nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return contractx.Reply(in.Proposal.Text), nil
}

func UnknownTool(ctx context.Context, in *GraphState) (contractx.Interpretation, error) {
	if in == nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	name := ""
	if in.Proposal.Call != nil {
		name = string(in.Proposal.Call.Name)
	}
	zerolog.Ctx(ctx).Error().Str("tool", name).Msg("model proposed an unknown operation")
	return contractx.Reply(msgUnknownOperation), nil
}
