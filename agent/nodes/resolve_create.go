package nodes

import (
	"context"
	"errors"
	"fmt"

	catalogx "github.com/tanpawarit/hitl-purchase-agent/agent/catalog"
	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

// ResolveCreate validates create arguments and resolves the product. Every
// user-correctable failure becomes a Reply; only store failures are errors.
func ResolveCreate(ctx context.Context, in *GraphState, resolver *catalogx.Resolver) (contractx.Interpretation, error) {
	if in == nil {
		return contractx.Interpretation{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	args := toolx.CreateArgsFrom(in.Args)
	if args.Detail == "" {
		return contractx.Reply(msgCreateNeedsDetail), nil
	}

	quantity, err := toolx.ParseQuantity(args.Quantity)
	switch {
	case errors.Is(err, toolx.ErrQuantityNotPositive):
		return contractx.Reply(msgQuantityNotPositive), nil
	case err != nil:
		return contractx.Reply(msgQuantityNotInteger), nil
	}

	res, err := resolver.ByDetail(ctx, args.Detail)
	if err != nil {
		return contractx.Interpretation{}, err
	}
	if !res.Resolved() {
		return contractx.Reply(fmt.Sprintf(msgProductNotUnique, args.Detail)), nil
	}

	product := res.Product
	pending := contractx.NewCreatePending(contractx.CreateOrderAction{
		ProductID:     product.ProductID,
		Detail:        product.Detail,
		UnitPrice:     product.Price,
		Quantity:      quantity,
		TotalAmount:   contractx.TotalAmount(quantity, product.Price),
		Justification: args.Justification,
	})
	return contractx.ApprovalRequired(pending, ImpactCreateOrder, pending.Create), nil
}
