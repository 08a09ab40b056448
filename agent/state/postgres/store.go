package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

var _ contractx.Gateway = (*Store)(nil)
var _ contractx.TranscriptRecorder = (*Store)(nil)

// Store implements the record store gateway and the transcript recorder.
type Store struct {
	db  bun.IDB
	now func() time.Time
}

func NewStore(db bun.IDB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) GetProduct(ctx context.Context, productID string) (contractx.Product, error) {
	row := new(productRow)
	err := s.db.NewSelect().
		Model(row).
		Where("p.product_id = ?", productID).
		Scan(ctx)
	if err != nil {
		return contractx.Product{}, mapError(err, "product", productID)
	}
	return productFromRow(*row), nil
}

func (s *Store) FindProductsByDetail(ctx context.Context, text string) ([]contractx.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	var rows []productRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("strpos(lower(trim(p.detail)), ?) > 0", needle).
		OrderExpr("p.product_id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, mapError(err, "product detail", needle)
	}
	return productsFromRows(rows), nil
}

func (s *Store) ListProducts(ctx context.Context, limit int) ([]contractx.Product, error) {
	var rows []productRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("p.product_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productsFromRows(rows), nil
}

func (s *Store) SaveProduct(ctx context.Context, p contractx.Product) (contractx.Product, error) {
	row := productToRow(p)
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (product_id) DO UPDATE").
		Set("detail = EXCLUDED.detail").
		Set("price = EXCLUDED.price").
		Exec(ctx)
	if err != nil {
		return contractx.Product{}, mapError(err, "product", p.ProductID)
	}
	return p, nil
}

func (s *Store) SaveOrder(ctx context.Context, o contractx.PurchaseOrder) (contractx.PurchaseOrder, error) {
	row := orderToRow(o)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return contractx.PurchaseOrder{}, mapError(err, "purchase order", o.ID)
	}
	return orderFromRow(row), nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (contractx.PurchaseOrder, error) {
	row := new(orderRow)
	err := s.db.NewSelect().
		Model(row).
		Where("po.id = ?", orderID).
		Scan(ctx)
	if err != nil {
		return contractx.PurchaseOrder{}, mapError(err, "purchase order", orderID)
	}
	return orderFromRow(*row), nil
}

// DeleteOrder deletes with RETURNING so the existence check and the removal
// are one statement; of two concurrent deletes only one gets the row back.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) (contractx.PurchaseOrder, error) {
	row := new(orderRow)
	err := s.db.NewDelete().
		Model(row).
		Where("id = ?", orderID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return contractx.PurchaseOrder{}, mapError(err, "purchase order", orderID)
	}
	if row.ID == "" {
		return contractx.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", orderID, contractx.ErrNotFound)
	}
	return orderFromRow(*row), nil
}

func (s *Store) ListOrders(ctx context.Context, filter contractx.OrderFilter) ([]contractx.PurchaseOrder, error) {
	var rows []orderRow
	if err := listOrdersQuery(s.db, &rows, filter).Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}

	out := make([]contractx.PurchaseOrder, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderFromRow(r))
	}
	return out, nil
}

// purchaseDateFormat renders purchase_date exactly like
// contract.PurchaseDateLayout does for a UTC time.
const purchaseDateFormat = `YYYY-MM-DD"T"HH24:MI:SS.US"Z"`

func listOrdersQuery(db bun.IDB, rows *[]orderRow, filter contractx.OrderFilter) *bun.SelectQuery {
	q := db.NewSelect().Model(rows)
	if filter.UserID != "" {
		q = q.Where("po.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("po.status = ?", filter.Status)
	}
	if filter.DatePrefix != "" {
		q = q.Where(
			"to_char(po.purchase_date AT TIME ZONE 'UTC', '"+purchaseDateFormat+"') LIKE ?",
			escapeLike(filter.DatePrefix)+"%",
		)
	}
	q = q.OrderExpr("po.purchase_date DESC, po.id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return q
}

func (s *Store) AppendSessionMessage(ctx context.Context, callerID string, msg contractx.ChatMessage) error {
	if strings.TrimSpace(callerID) == "" {
		return fmt.Errorf("%w: caller id is empty", contractx.ErrValidation)
	}

	row := sessionMessageRow{
		UserID:    callerID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("append session message for %s: %w", callerID, err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, callerID string) ([]contractx.ChatMessage, error) {
	var rows []sessionMessageRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("sm.user_id = ?", callerID).
		OrderExpr("sm.id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load session history for %s: %w", callerID, err)
	}

	out := make([]contractx.ChatMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.ChatMessage{Role: contractx.Role(r.Role), Content: r.Content})
	}
	return out, nil
}

func productsFromRows(rows []productRow) []contractx.Product {
	out := make([]contractx.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, productFromRow(r))
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
