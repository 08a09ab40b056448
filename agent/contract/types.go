package contract

import (
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolName is the closed set of operations offered to the model.
type ToolName string

const (
	ToolCreatePurchaseOrder ToolName = "create_purchase_order"
	ToolListPurchaseOrders  ToolName = "list_purchase_orders"
	ToolDeletePurchaseOrder ToolName = "delete_purchase_order"
)

func (t ToolName) Known() bool {
	switch t {
	case ToolCreatePurchaseOrder, ToolListPurchaseOrders, ToolDeletePurchaseOrder:
		return true
	default:
		return false
	}
}

type ToolCall struct {
	Name ToolName `json:"name"`
	// RawArguments is the model-serialized argument object, usually JSON.
	RawArguments string `json:"raw_arguments"`
}

// Proposal is what the model answered for a turn: plain text or a single tool call.
type Proposal struct {
	Text string    `json:"text,omitempty"`
	Call *ToolCall `json:"call,omitempty"`
}

type ActionKind string

const (
	ActionCreatePurchaseOrder ActionKind = "CREATE_PURCHASE_ORDER"
	ActionDeletePurchaseOrder ActionKind = "DELETE_PURCHASE_ORDER"
)

// CreateOrderAction is a fully resolved order creation awaiting approval.
type CreateOrderAction struct {
	Action        ActionKind      `json:"action"`
	ProductID     string          `json:"product_id"`
	Detail        string          `json:"detail"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Justification string          `json:"justification"`
}

type DeleteOrderAction struct {
	Action          ActionKind `json:"action"`
	PurchaseOrderID string     `json:"purchase_order_id"`
	Reason          string     `json:"reason"`
}

// PendingAction is a tagged union: exactly one of Create or Delete is set,
// matching Kind.
type PendingAction struct {
	Kind   ActionKind
	Create *CreateOrderAction
	Delete *DeleteOrderAction
}

func NewCreatePending(a CreateOrderAction) *PendingAction {
	a.Action = ActionCreatePurchaseOrder
	return &PendingAction{Kind: ActionCreatePurchaseOrder, Create: &a}
}

func NewDeletePending(a DeleteOrderAction) *PendingAction {
	a.Action = ActionDeletePurchaseOrder
	return &PendingAction{Kind: ActionDeletePurchaseOrder, Delete: &a}
}

// Payload is the descriptor the client echoes back to /execute.
func (p *PendingAction) Payload() any {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case ActionCreatePurchaseOrder:
		return p.Create
	case ActionDeletePurchaseOrder:
		return p.Delete
	default:
		return nil
	}
}

// Approval is what the confirmation UI renders to the human.
type Approval struct {
	Action ActionKind `json:"action"`
	Impact string     `json:"impact"`
	Record any        `json:"record"`
}

type InterpretationKind string

const (
	InterpretationReply            InterpretationKind = "REPLY"
	InterpretationApprovalRequired InterpretationKind = "APPROVAL_REQUIRED"
)

// Interpretation is the outcome of one chat turn.
type Interpretation struct {
	Kind     InterpretationKind
	Text     string
	Pending  *PendingAction
	Approval *Approval
}

func Reply(text string) Interpretation {
	return Interpretation{Kind: InterpretationReply, Text: text}
}

func ApprovalRequired(pending *PendingAction, impact string, record any) Interpretation {
	return Interpretation{
		Kind:    InterpretationApprovalRequired,
		Pending: pending,
		Approval: &Approval{
			Action: pending.Kind,
			Impact: impact,
			Record: record,
		},
	}
}

// ExecuteRequest is the approved payload merged with the caller id.
// Quantity stays untyped because clients may echo it as a number or a string.
type ExecuteRequest struct {
	UserID          string     `json:"user_id"`
	Action          ActionKind `json:"action"`
	ProductID       string     `json:"product_id,omitempty"`
	Detail          string     `json:"detail,omitempty"`
	Quantity        any        `json:"quantity,omitempty"`
	Justification   string     `json:"justification,omitempty"`
	PurchaseOrderID string     `json:"purchase_order_id,omitempty"`
	Reason          string     `json:"reason,omitempty"`
}

type ExecutionResult struct {
	Status               string         `json:"status"`
	Action               ActionKind     `json:"action"`
	PurchaseOrder        *PurchaseOrder `json:"purchase_order,omitempty"`
	DeletedPurchaseOrder *PurchaseOrder `json:"deleted_purchase_order,omitempty"`
}

const StatusExecuted = "EXECUTED"
