// Package executor commits approved actions. It runs after the human
// confirmed, never calls the model, and re-validates everything against the
// current records before writing.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	catalogx "github.com/tanpawarit/hitl-purchase-agent/agent/catalog"
	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	toolx "github.com/tanpawarit/hitl-purchase-agent/agent/tool"
)

var _ contractx.Executor = (*Service)(nil)

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

type Service struct {
	store    contractx.Gateway
	resolver *catalogx.Resolver
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func New(store contractx.Gateway, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}

	s := &Service{
		store:    store,
		resolver: catalogx.NewResolver(store),
		logger:   zerolog.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Service) Execute(ctx context.Context, req contractx.ExecuteRequest) (contractx.ExecutionResult, error) {
	callerID := strings.TrimSpace(req.UserID)
	if callerID == "" {
		return contractx.ExecutionResult{}, fmt.Errorf("%w: user_id is required to execute an action", contractx.ErrValidation)
	}

	logger := s.requestLogger(ctx).With().Str("user_id", callerID).Logger()

	switch req.Action {
	case contractx.ActionDeletePurchaseOrder:
		return s.deleteOrder(ctx, logger, callerID, req)
	case "", contractx.ActionCreatePurchaseOrder:
		return s.createOrder(ctx, logger, callerID, req)
	default:
		return contractx.ExecutionResult{}, fmt.Errorf("%w: unsupported action=%q", contractx.ErrValidation, req.Action)
	}
}

func (s *Service) deleteOrder(
	ctx context.Context,
	logger zerolog.Logger,
	callerID string,
	req contractx.ExecuteRequest,
) (contractx.ExecutionResult, error) {
	orderID := strings.TrimSpace(req.PurchaseOrderID)
	if orderID == "" {
		return contractx.ExecutionResult{}, fmt.Errorf("%w: purchase_order_id is required to delete", contractx.ErrValidation)
	}

	existing, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return contractx.ExecutionResult{}, err
	}
	if !existing.OwnedBy(callerID) {
		return contractx.ExecutionResult{}, fmt.Errorf("%w: purchase order %s belongs to another user", contractx.ErrForbidden, orderID)
	}

	// DeleteOrder fails with ErrNotFound if a concurrent call won the race.
	deleted, err := s.store.DeleteOrder(ctx, orderID)
	if err != nil {
		return contractx.ExecutionResult{}, err
	}

	logger.Info().
		Str("purchase_order_id", deleted.ID).
		Str("reason", req.Reason).
		Msg("purchase order deleted")

	return contractx.ExecutionResult{
		Status:               contractx.StatusExecuted,
		Action:               contractx.ActionDeletePurchaseOrder,
		DeletedPurchaseOrder: &deleted,
	}, nil
}

func (s *Service) createOrder(
	ctx context.Context,
	logger zerolog.Logger,
	callerID string,
	req contractx.ExecuteRequest,
) (contractx.ExecutionResult, error) {
	res, err := s.resolver.ByIDOrDetail(ctx, req.ProductID, req.Detail)
	if err != nil {
		return contractx.ExecutionResult{}, err
	}
	if !res.Resolved() {
		return contractx.ExecutionResult{}, fmt.Errorf(
			"%w: product could not be resolved; send an existing product_id or a valid detail",
			contractx.ErrValidation,
		)
	}

	quantity, err := toolx.ParseQuantity(req.Quantity)
	if err != nil {
		return contractx.ExecutionResult{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	// Price is read now, not taken from the approved payload.
	product := res.Product
	order := contractx.PurchaseOrder{
		ID:            s.newID(),
		UserID:        callerID,
		ProductID:     product.ProductID,
		Detail:        product.Detail,
		UnitPrice:     product.Price,
		Quantity:      quantity,
		TotalAmount:   contractx.TotalAmount(quantity, product.Price),
		Justification: strings.TrimSpace(req.Justification),
		PurchaseDate:  s.now().UTC(),
		Status:        contractx.OrderStatusExecuted,
	}

	saved, err := s.store.SaveOrder(ctx, order)
	if err != nil {
		return contractx.ExecutionResult{}, fmt.Errorf("save purchase order: %w", err)
	}

	logger.Info().
		Str("purchase_order_id", saved.ID).
		Str("product_id", saved.ProductID).
		Int("quantity", saved.Quantity).
		Str("total_amount", saved.TotalAmount.StringFixed(2)).
		Msg("purchase order created")

	return contractx.ExecutionResult{
		Status:        contractx.StatusExecuted,
		Action:        contractx.ActionCreatePurchaseOrder,
		PurchaseOrder: &saved,
	}, nil
}

func (s *Service) requestLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
