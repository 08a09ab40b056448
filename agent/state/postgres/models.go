package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ProductID string          `bun:"product_id,pk"`
	Detail    string          `bun:"detail,notnull"`
	Price     decimal.Decimal `bun:"price,type:numeric(12,2),notnull"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:purchase_orders,alias:po"`

	ID            string          `bun:"id,pk"`
	UserID        string          `bun:"user_id,notnull"`
	ProductID     string          `bun:"product_id,notnull"`
	Detail        string          `bun:"detail,notnull"`
	UnitPrice     decimal.Decimal `bun:"unit_price,type:numeric(12,2),notnull"`
	Quantity      int             `bun:"quantity,notnull"`
	TotalAmount   decimal.Decimal `bun:"total_amount,type:numeric(14,2),notnull"`
	Justification string          `bun:"justification,notnull"`
	PurchaseDate  time.Time       `bun:"purchase_date,type:timestamptz,notnull"`
	Status        string          `bun:"status,notnull"`
}

type sessionMessageRow struct {
	bun.BaseModel `bun:"table:session_messages,alias:sm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,type:timestamptz,notnull"`
}

func productFromRow(r productRow) contractx.Product {
	return contractx.Product{
		ProductID: r.ProductID,
		Detail:    r.Detail,
		Price:     r.Price,
	}
}

func productToRow(p contractx.Product) productRow {
	return productRow{
		ProductID: p.ProductID,
		Detail:    p.Detail,
		Price:     p.Price,
	}
}

func orderFromRow(r orderRow) contractx.PurchaseOrder {
	return contractx.PurchaseOrder{
		ID:            r.ID,
		UserID:        r.UserID,
		ProductID:     r.ProductID,
		Detail:        r.Detail,
		UnitPrice:     r.UnitPrice,
		Quantity:      r.Quantity,
		TotalAmount:   r.TotalAmount,
		Justification: r.Justification,
		PurchaseDate:  r.PurchaseDate.UTC(),
		Status:        contractx.OrderStatus(r.Status),
	}
}

func orderToRow(o contractx.PurchaseOrder) orderRow {
	return orderRow{
		ID:            o.ID,
		UserID:        o.UserID,
		ProductID:     o.ProductID,
		Detail:        o.Detail,
		UnitPrice:     o.UnitPrice,
		Quantity:      o.Quantity,
		TotalAmount:   o.TotalAmount,
		Justification: o.Justification,
		PurchaseDate:  o.PurchaseDate.UTC(),
		Status:        string(o.Status),
	}
}
