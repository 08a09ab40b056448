// Package memory is an in-process record store for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

var _ contractx.Gateway = (*Store)(nil)
var _ contractx.TranscriptRecorder = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	products map[string]contractx.Product
	orders   map[string]contractx.PurchaseOrder
	sessions map[string][]contractx.ChatMessage
}

func New() *Store {
	return &Store{
		products: make(map[string]contractx.Product),
		orders:   make(map[string]contractx.PurchaseOrder),
		sessions: make(map[string][]contractx.ChatMessage),
	}
}

func (s *Store) GetProduct(ctx context.Context, productID string) (contractx.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return contractx.Product{}, fmt.Errorf("product %s: %w", productID, contractx.ErrNotFound)
	}
	return p, nil
}

func (s *Store) FindProductsByDetail(ctx context.Context, text string) ([]contractx.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contractx.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(strings.TrimSpace(p.Detail)), needle) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context, limit int) ([]contractx.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contractx.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sortProducts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SaveProduct(ctx context.Context, p contractx.Product) (contractx.Product, error) {
	if strings.TrimSpace(p.ProductID) == "" {
		return contractx.Product{}, fmt.Errorf("%w: product_id is empty", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ProductID] = p
	return p, nil
}

func (s *Store) SaveOrder(ctx context.Context, o contractx.PurchaseOrder) (contractx.PurchaseOrder, error) {
	if strings.TrimSpace(o.ID) == "" {
		return contractx.PurchaseOrder{}, fmt.Errorf("%w: order id is empty", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (contractx.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return contractx.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", orderID, contractx.ErrNotFound)
	}
	return o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) (contractx.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return contractx.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", orderID, contractx.ErrNotFound)
	}
	delete(s.orders, orderID)
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter contractx.OrderFilter) ([]contractx.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contractx.PurchaseOrder
	for _, o := range s.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		if filter.DatePrefix != "" &&
			!strings.HasPrefix(o.PurchaseDate.UTC().Format(contractx.PurchaseDateLayout), filter.DatePrefix) {
			continue
		}
		out = append(out, o)
	}

	slices.SortFunc(out, func(a, b contractx.PurchaseOrder) int {
		if c := b.PurchaseDate.Compare(a.PurchaseDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) AppendSessionMessage(ctx context.Context, callerID string, msg contractx.ChatMessage) error {
	if strings.TrimSpace(callerID) == "" {
		return fmt.Errorf("%w: caller id is empty", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[callerID] = append(s.sessions[callerID], msg)
	return nil
}

func (s *Store) History(ctx context.Context, callerID string) ([]contractx.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions[callerID]), nil
}

func sortProducts(ps []contractx.Product) {
	slices.SortFunc(ps, func(a, b contractx.Product) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
}
