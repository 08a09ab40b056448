package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

type OrderLister interface {
	ListOrders(ctx context.Context, filter contractx.OrderFilter) ([]contractx.PurchaseOrder, error)
}

// ListOrders is read-only and therefore always answers with a Reply.
func ListOrders(ctx context.Context, in *GraphState, store OrderLister) (contractx.Interpretation, error) {
	if in == nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	args := toolx.ListArgsFrom(in.Args)
	userID := args.UserID
	if userID == "" {
		userID = in.CallerID
	}

	orders, err := store.ListOrders(ctx, contractx.OrderFilter{
		UserID:     userID,
		DatePrefix: args.Date,
		Status:     args.Status,
		Limit:      args.Limit,
	})
	if err != nil {
		return contractx.Interpretation{}, fmt.Errorf("list purchase orders: %w", err)
	}
	if len(orders) == 0 {
		return contractx.Reply(msgNoOrdersFound), nil
	}

	rendered, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return contractx.Interpretation{}, fmt.Errorf("render purchase orders: %w", err)
	}
	return contractx.Reply(msgOrdersFoundHeader + string(rendered) + "\n```"), nil
}
