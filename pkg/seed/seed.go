// Package seed fills a record store with random demo data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

const catalogScanLimit = 500

var ErrEmptyCatalog = errors.New("catalog has no products; seed products first")

var adjectives = []string{
	"Industrial", "Premium", "Compact", "Smart", "Wireless",
	"Heavy Duty", "Eco", "High-Performance", "Portable", "Advanced",
}

var nouns = []string{
	"Laptop", "Monitor", "Keyboard", "Mouse", "Headset",
	"Router", "Printer", "Scanner", "Docking Station", "Projector",
}

var justifications = []string{
	"Inventory replenishment.",
	"New need from the operations team.",
	"Replacement of obsolete equipment.",
	"Support for sales team growth.",
	"Standard technology refresh.",
}

type store interface {
	SaveProduct(ctx context.Context, p contractx.Product) (contractx.Product, error)
	ListProducts(ctx context.Context, limit int) ([]contractx.Product, error)
	SaveOrder(ctx context.Context, o contractx.PurchaseOrder) (contractx.PurchaseOrder, error)
}

type Seeder struct {
	store store
	rnd   *rand.Rand
	now   func() time.Time
}

func New(s store, rnd *rand.Rand) *Seeder {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{store: s, rnd: rnd, now: time.Now}
}

// RandomProduct builds PRD-NNNN with a price uniform in [25, 2500].
func (s *Seeder) RandomProduct(index int) contractx.Product {
	adjective := adjectives[s.rnd.IntN(len(adjectives))]
	noun := nouns[s.rnd.IntN(len(nouns))]
	price := decimal.NewFromFloat(25 + s.rnd.Float64()*(2500-25)).Round(2)

	return contractx.Product{
		ProductID: fmt.Sprintf("PRD-%04d", index),
		Detail:    fmt.Sprintf("%s %s %02d", adjective, noun, index),
		Price:     price,
	}
}

func (s *Seeder) RandomOrder(userID string, products []contractx.Product) contractx.PurchaseOrder {
	p := products[s.rnd.IntN(len(products))]
	quantity := 1 + s.rnd.IntN(20)

	return contractx.PurchaseOrder{
		ID:            uuid.NewString(),
		UserID:        userID,
		ProductID:     p.ProductID,
		Detail:        p.Detail,
		UnitPrice:     p.Price,
		Quantity:      quantity,
		TotalAmount:   contractx.TotalAmount(quantity, p.Price),
		Justification: justifications[s.rnd.IntN(len(justifications))],
		PurchaseDate:  s.now().UTC(),
		Status:        contractx.OrderStatusExecuted,
	}
}

func (s *Seeder) Products(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: n must be greater than 0", contractx.ErrValidation)
	}
	for i := 1; i <= n; i++ {
		if _, err := s.store.SaveProduct(ctx, s.RandomProduct(i)); err != nil {
			return fmt.Errorf("save product %d: %w", i, err)
		}
	}
	return nil
}

func (s *Seeder) Orders(ctx context.Context, userID string, n int) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	if n <= 0 {
		return fmt.Errorf("%w: n must be greater than 0", contractx.ErrValidation)
	}

	products, err := s.store.ListProducts(ctx, catalogScanLimit)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return ErrEmptyCatalog
	}

	for i := 0; i < n; i++ {
		if _, err := s.store.SaveOrder(ctx, s.RandomOrder(userID, products)); err != nil {
			return fmt.Errorf("save order %d: %w", i, err)
		}
	}
	return nil
}
