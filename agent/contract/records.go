package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is the lifecycle state of a persisted purchase order.
type OrderStatus string

const OrderStatusExecuted OrderStatus = "EXECUTED"

// Product is a catalog entry. Products are read-only outside of seeding.
type Product struct {
	ProductID string          `json:"product_id"`
	Detail    string          `json:"detail"`
	Price     decimal.Decimal `json:"price"`
}

// PurchaseOrder is only ever written by the executor, in full.
type PurchaseOrder struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ProductID     string          `json:"product_id"`
	Detail        string          `json:"detail"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Justification string          `json:"justification"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	Status        OrderStatus     `json:"status"`
}

// OwnedBy is false only when both the recorded owner and the caller are
// known and differ. Untraced callers skip the check.
func (o PurchaseOrder) OwnedBy(callerID string) bool {
	if callerID == "" || o.UserID == "" {
		return true
	}
	return o.UserID == callerID
}

// OrderFilter narrows ListOrders. Empty fields do not filter.
type OrderFilter struct {
	UserID string
	// DatePrefix is matched against the UTC ISO-8601 rendering of purchase_date.
	DatePrefix string
	Status     string
	Limit      int
}

// TotalAmount returns quantity × unitPrice rounded to cents.
func TotalAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// PurchaseDateLayout is the canonical textual form of purchase_date used for
// prefix filtering.
const PurchaseDateLayout = "2006-01-02T15:04:05.000000Z07:00"
