package contract

import "context"

// Proposer is the language-model collaborator.
type Proposer interface {
	ProposeAction(ctx context.Context, conversation []ChatMessage) (Proposal, error)
}

// Gateway is the record store contract. Lookups of missing records return
// an error wrapping ErrNotFound.
type Gateway interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
	// FindProductsByDetail returns every product whose normalized detail equals
	// or contains the normalized text, ordered by product id.
	FindProductsByDetail(ctx context.Context, text string) ([]Product, error)
	ListProducts(ctx context.Context, limit int) ([]Product, error)
	SaveProduct(ctx context.Context, p Product) (Product, error)

	SaveOrder(ctx context.Context, o PurchaseOrder) (PurchaseOrder, error)
	GetOrder(ctx context.Context, orderID string) (PurchaseOrder, error)
	// DeleteOrder removes the order and returns it. A second delete of the same
	// id fails with ErrNotFound.
	DeleteOrder(ctx context.Context, orderID string) (PurchaseOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
}

type TranscriptRecorder interface {
	AppendSessionMessage(ctx context.Context, callerID string, msg ChatMessage) error
	History(ctx context.Context, callerID string) ([]ChatMessage, error)
}

type Interpreter interface {
	Interpret(ctx context.Context, callerID string, conversation []ChatMessage) (Interpretation, error)
}

type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecutionResult, error)
}
