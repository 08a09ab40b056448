package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

func ProposeAction(ctx context.Context, in *GraphState, proposer contractx.Proposer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	proposal, err := proposer.ProposeAction(ctx, in.Conversation)
	if err != nil {
		return nil, err
	}
	in.Proposal = proposal

	if proposal.Call != nil {
		args, ok := toolx.DecodeArgs(proposal.Call.RawArguments)
		if !ok {
			zerolog.Ctx(ctx).Warn().
				Str("tool", string(proposal.Call.Name)).
				Str("raw_arguments", proposal.Call.RawArguments).
				Msg("tool arguments are not a JSON object, using empty arguments")
		}
		in.Args = args
	}
	return in, nil
}
