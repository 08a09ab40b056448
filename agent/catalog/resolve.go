// Package catalog maps free-text product references onto catalog records.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

type Outcome string

const (
	OutcomeUnique    Outcome = "unique"
	OutcomeNone      Outcome = "none"
	OutcomeAmbiguous Outcome = "ambiguous"
)

type Resolution struct {
	Outcome    Outcome
	Product    contractx.Product
	Candidates int
}

func (r Resolution) Resolved() bool {
	return r.Outcome == OutcomeUnique
}

// Normalize lowercases and trims a detail for comparison.
func Normalize(detail string) string {
	return strings.ToLower(strings.TrimSpace(detail))
}

// Match applies the resolution rule to a candidate list: an exact normalized
// match wins outright (the first one in candidate order); otherwise exactly one
// substring match resolves; zero or several substring matches do not.
func Match(candidates []contractx.Product, detail string) Resolution {
	needle := Normalize(detail)
	if needle == "" {
		return Resolution{Outcome: OutcomeNone}
	}

	var partial []contractx.Product
	for _, p := range candidates {
		hay := Normalize(p.Detail)
		if hay == needle {
			return Resolution{Outcome: OutcomeUnique, Product: p, Candidates: 1}
		}
		if strings.Contains(hay, needle) {
			partial = append(partial, p)
		}
	}

	switch len(partial) {
	case 0:
		return Resolution{Outcome: OutcomeNone}
	case 1:
		return Resolution{Outcome: OutcomeUnique, Product: partial[0], Candidates: 1}
	default:
		return Resolution{Outcome: OutcomeAmbiguous, Candidates: len(partial)}
	}
}

type productFinder interface {
	GetProduct(ctx context.Context, productID string) (contractx.Product, error)
	FindProductsByDetail(ctx context.Context, text string) ([]contractx.Product, error)
}

// Resolver resolves products against the record store.
type Resolver struct {
	store productFinder
}

func NewResolver(store productFinder) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) ByDetail(ctx context.Context, detail string) (Resolution, error) {
	if Normalize(detail) == "" {
		return Resolution{Outcome: OutcomeNone}, nil
	}
	candidates, err := r.store.FindProductsByDetail(ctx, detail)
	if err != nil {
		return Resolution{}, fmt.Errorf("find products by detail: %w", err)
	}
	return Match(candidates, detail), nil
}

// ByIDOrDetail prefers the product id and falls back to the detail rule when
// the id is empty or unknown.
func (r *Resolver) ByIDOrDetail(ctx context.Context, productID, detail string) (Resolution, error) {
	if id := strings.TrimSpace(productID); id != "" {
		p, err := r.store.GetProduct(ctx, id)
		switch {
		case err == nil:
			return Resolution{Outcome: OutcomeUnique, Product: p, Candidates: 1}, nil
		case !errors.Is(err, contractx.ErrNotFound):
			return Resolution{}, fmt.Errorf("get product: %w", err)
		}
	}
	return r.ByDetail(ctx, detail)
}
