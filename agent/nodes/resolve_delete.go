package nodes

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

type OrderGetter interface {
	GetOrder(ctx context.Context, orderID string) (contractx.PurchaseOrder, error)
}

// ResolveDelete requires the order to exist and to be owned by the caller.
func ResolveDelete(ctx context.Context, in *GraphState, store OrderGetter) (contractx.Interpretation, error) {
	if in == nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	args := toolx.DeleteArgsFrom(in.Args)
	if args.PurchaseOrderID == "" {
		return contractx.Reply(msgDeleteNeedsID), nil
	}

	target, err := store.GetOrder(ctx, args.PurchaseOrderID)
	switch {
	case errors.Is(err, contractx.ErrNotFound):
		return contractx.Reply(fmt.Sprintf(msgOrderNotFound, args.PurchaseOrderID)), nil
	case err != nil:
		return contractx.Interpretation{}, fmt.Errorf("get purchase order: %w", err)
	}

	if !target.OwnedBy(in.CallerID) {
		return contractx.Reply(msgDeleteForeignOrder), nil
	}

	pending := contractx.NewDeletePending(contractx.DeleteOrderAction{
		PurchaseOrderID: args.PurchaseOrderID,
		Reason:          args.Reason,
	})
	return contractx.ApprovalRequired(pending, ImpactDeleteOrder, target), nil
}
