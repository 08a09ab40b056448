package nodes

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

const (
	NodeValidateRequest = "validate_request"
	NodeProposeAction   = "propose_action"
	NodeReplyText       = "reply_text"
	NodeResolveCreate   = "resolve_create"
	NodeListOrders      = "list_orders"
	NodeResolveDelete   = "resolve_delete"
	NodeUnknownTool     = "unknown_tool"
)

// RouteTargets lists every node Route may pick.
func RouteTargets() map[string]bool {
	return map[string]bool{
		NodeReplyText:     true,
		NodeResolveCreate: true,
		NodeListOrders:    true,
		NodeResolveDelete: true,
		NodeUnknownTool:   true,
	}
}

// Route dispatches on the closed set of tool names. Anything else lands on
// NodeUnknownTool instead of being looked up dynamically.
func Route(_ context.Context, in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Proposal.Call == nil {
		return NodeReplyText, nil
	}

	switch in.Proposal.Call.Name {
	case contractx.ToolCreatePurchaseOrder:
		return NodeResolveCreate, nil
	case contractx.ToolListPurchaseOrders:
		return NodeListOrders, nil
	case contractx.ToolDeletePurchaseOrder:
		return NodeResolveDelete, nil
	default:
		return NodeUnknownTool, nil
	}
}
