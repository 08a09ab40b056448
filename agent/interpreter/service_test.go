package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	"github.com/tanpawarit/hitl-purchase-agent/agent/state/memory"
)

type fakeProposer struct {
	proposal contractx.Proposal
	err      error
	calls    int
	got      []contractx.ChatMessage
}

func (f *fakeProposer) ProposeAction(ctx context.Context, conv []contractx.ChatMessage) (contractx.Proposal, error) {
	f.calls++
	f.got = conv
	if f.err != nil {
		return contractx.Proposal{}, f.err
	}
	return f.proposal, nil
}

func toolCall(name contractx.ToolName, args string) *fakeProposer {
	return &fakeProposer{proposal: contractx.Proposal{Call: &contractx.ToolCall{Name: name, RawArguments: args}}}
}

func newCatalog(t *testing.T, products ...contractx.Product) *memory.Store {
	t.Helper()
	store := memory.New()
	for _, p := range products {
		if _, err := store.SaveProduct(context.Background(), p); err != nil {
			t.Fatalf("SaveProduct() error = %v", err)
		}
	}
	return store
}

func product(id, detail, price string) contractx.Product {
	return contractx.Product{ProductID: id, Detail: detail, Price: decimal.RequireFromString(price)}
}

func newService(t *testing.T, proposer contractx.Proposer, store contractx.Gateway) *Service {
	t.Helper()
	svc, err := New(proposer, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

var userTurn = []contractx.ChatMessage{{Role: contractx.RoleUser, Content: "please help"}}

func TestInterpretPlainTextIsReply(t *testing.T) {
	t.Parallel()

	fake := &fakeProposer{proposal: contractx.Proposal{Text: "Hello, what do you need?"}}
	svc := newService(t, fake, newCatalog(t))

	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationReply || out.Text != "Hello, what do you need?" {
		t.Fatalf("unexpected interpretation: %#v", out)
	}
	if fake.calls != 1 || len(fake.got) != 1 {
		t.Fatalf("proposer calls=%d conv=%d", fake.calls, len(fake.got))
	}
}

func TestInterpretCreateSmartLaptopScenario(t *testing.T) {
	t.Parallel()

	store := newCatalog(t,
		product("PRD-0001", "Smart Laptop 01", "500.00"),
		product("PRD-0002", "Smart Laptop 01 Pro", "900.00"),
	)
	fake := toolCall(contractx.ToolCreatePurchaseOrder, `{"detail":"smart laptop 01 ","quantity":3,"justification":"new hires"}`)
	svc := newService(t, fake, store)

	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationApprovalRequired {
		t.Fatalf("Kind = %s, text = %q", out.Kind, out.Text)
	}

	create := out.Pending.Create
	if create == nil || out.Pending.Kind != contractx.ActionCreatePurchaseOrder {
		t.Fatalf("unexpected pending: %#v", out.Pending)
	}
	if create.ProductID != "PRD-0001" || create.Detail != "Smart Laptop 01" || create.Quantity != 3 {
		t.Fatalf("unexpected create action: %#v", create)
	}
	if !create.TotalAmount.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("TotalAmount = %s, want 1500", create.TotalAmount)
	}
	if create.Justification != "new hires" {
		t.Fatalf("Justification = %q", create.Justification)
	}
	if out.Approval.Impact != "A new purchase order will be created." {
		t.Fatalf("Impact = %q", out.Approval.Impact)
	}
	if out.Approval.Record != create {
		t.Fatal("approval record should be the enriched create action")
	}
}

func TestInterpretCreateRoundsTotal(t *testing.T) {
	t.Parallel()

	store := newCatalog(t, product("PRD-0001", "USB Cable", "3.335"))
	svc := newService(t, toolCall(contractx.ToolCreatePurchaseOrder, `{"detail":"USB Cable","quantity":"3"}`), store)

	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationApprovalRequired {
		t.Fatalf("Kind = %s, text = %q", out.Kind, out.Text)
	}
	if got := out.Pending.Create.TotalAmount.String(); got != "10.01" {
		t.Fatalf("TotalAmount = %s, want 10.01", got)
	}
}

func TestInterpretCreateCorrectableFailuresAreReplies(t *testing.T) {
	t.Parallel()

	store := newCatalog(t,
		product("PRD-0001", "Office Chair Black", "120.00"),
		product("PRD-0002", "Office Chair White", "125.00"),
	)

	cases := []struct {
		name string
		args string
		want string
	}{
		{name: "missing detail", args: `{"quantity":2}`, want: "I need the product `detail`"},
		{name: "fractional quantity", args: `{"detail":"Office Chair Black","quantity":2.5}`, want: "valid whole number"},
		{name: "text quantity", args: `{"detail":"Office Chair Black","quantity":"two"}`, want: "valid whole number"},
		{name: "missing quantity", args: `{"detail":"Office Chair Black"}`, want: "valid whole number"},
		{name: "zero quantity", args: `{"detail":"Office Chair Black","quantity":0}`, want: "greater than 0"},
		{name: "negative quantity", args: `{"detail":"Office Chair Black","quantity":-4}`, want: "greater than 0"},
		{name: "ambiguous detail", args: `{"detail":"office chair","quantity":1}`, want: "unique product"},
		{name: "unknown detail", args: `{"detail":"Standing Desk","quantity":1}`, want: "unique product"},
		{name: "malformed arguments", args: `{"detail":`, want: "I need the product `detail`"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newService(t, toolCall(contractx.ToolCreatePurchaseOrder, tc.args), store)
			out, err := svc.Interpret(context.Background(), "alice", userTurn)
			if err != nil {
				t.Fatalf("Interpret() error = %v", err)
			}
			if out.Kind != contractx.InterpretationReply {
				t.Fatalf("Kind = %s, want REPLY", out.Kind)
			}
			if out.Pending != nil || out.Approval != nil {
				t.Fatalf("reply must not carry a pending action: %#v", out)
			}
			if !strings.Contains(out.Text, tc.want) {
				t.Fatalf("Text = %q, want contains %q", out.Text, tc.want)
			}
		})
	}
}

func TestInterpretExactMatchBeatsSubstringMatches(t *testing.T) {
	t.Parallel()

	store := newCatalog(t,
		product("PRD-0001", "Monitor 24 Pro", "300.00"),
		product("PRD-0002", "Monitor 24", "200.00"),
		product("PRD-0003", "Monitor 24 Curved", "250.00"),
	)
	svc := newService(t, toolCall(contractx.ToolCreatePurchaseOrder, `{"detail":"  MONITOR 24 ","quantity":1}`), store)

	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationApprovalRequired || out.Pending.Create.ProductID != "PRD-0002" {
		t.Fatalf("unexpected interpretation: %#v", out)
	}
}

func TestInterpretListUsesCallerAndLimit(t *testing.T) {
	t.Parallel()

	store := newCatalog(t)
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"po-a", "po-b", "po-c", "po-d", "po-e"} {
		_, err := store.SaveOrder(context.Background(), contractx.PurchaseOrder{
			ID:           id,
			UserID:       "alice",
			ProductID:    "PRD-0001",
			Quantity:     1,
			UnitPrice:    decimal.NewFromInt(10),
			TotalAmount:  decimal.NewFromInt(10),
			PurchaseDate: base.Add(time.Duration(i) * time.Hour),
			Status:       contractx.OrderStatusExecuted,
		})
		if err != nil {
			t.Fatalf("SaveOrder() error = %v", err)
		}
	}
	_, _ = store.SaveOrder(context.Background(), contractx.PurchaseOrder{
		ID: "po-bob", UserID: "bob", PurchaseDate: base.Add(48 * time.Hour), Status: contractx.OrderStatusExecuted,
	})

	svc := newService(t, toolCall(contractx.ToolListPurchaseOrders, `{"status":"EXECUTED","limit":2}`), store)
	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationReply {
		t.Fatalf("Kind = %s, want REPLY", out.Kind)
	}
	if !strings.HasPrefix(out.Text, "Purchase orders found:\n```json\n") {
		t.Fatalf("Text = %q", out.Text)
	}
	if strings.Count(out.Text, `"id":`) != 2 {
		t.Fatalf("expected exactly two orders in %q", out.Text)
	}
	if strings.Index(out.Text, "po-e") > strings.Index(out.Text, "po-d") || strings.Contains(out.Text, "po-c") {
		t.Fatalf("orders not newest first: %q", out.Text)
	}
	if strings.Contains(out.Text, "po-bob") {
		t.Fatalf("other user's orders leaked: %q", out.Text)
	}
}

func TestInterpretListEmpty(t *testing.T) {
	t.Parallel()

	svc := newService(t, toolCall(contractx.ToolListPurchaseOrders, `{"date":"1999-01"}`), newCatalog(t))
	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationReply || !strings.Contains(out.Text, "No purchase orders") {
		t.Fatalf("unexpected interpretation: %#v", out)
	}
}

func seedOrder(t *testing.T, store *memory.Store, id, owner string) contractx.PurchaseOrder {
	t.Helper()
	o, err := store.SaveOrder(context.Background(), contractx.PurchaseOrder{
		ID:           id,
		UserID:       owner,
		ProductID:    "PRD-0001",
		Detail:       "Smart Laptop 01",
		UnitPrice:    decimal.NewFromInt(500),
		Quantity:     1,
		TotalAmount:  decimal.NewFromInt(500),
		PurchaseDate: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		Status:       contractx.OrderStatusExecuted,
	})
	if err != nil {
		t.Fatalf("SaveOrder() error = %v", err)
	}
	return o
}

func TestInterpretDeleteOwnOrderRequiresApproval(t *testing.T) {
	t.Parallel()

	store := newCatalog(t)
	seedOrder(t, store, "X", "alice")
	svc := newService(t, toolCall(contractx.ToolDeletePurchaseOrder, `{"purchase_order_id":"X","reason":"duplicate"}`), store)

	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationApprovalRequired {
		t.Fatalf("Kind = %s, text = %q", out.Kind, out.Text)
	}
	del := out.Pending.Delete
	if del == nil || del.PurchaseOrderID != "X" || del.Reason != "duplicate" || del.Action != contractx.ActionDeletePurchaseOrder {
		t.Fatalf("unexpected delete action: %#v", del)
	}
	record, ok := out.Approval.Record.(contractx.PurchaseOrder)
	if !ok || record.ID != "X" {
		t.Fatalf("approval record = %#v, want existing order", out.Approval.Record)
	}
	if out.Approval.Impact != "The purchase order record will be permanently deleted." {
		t.Fatalf("Impact = %q", out.Approval.Impact)
	}
}

func TestInterpretDeleteForeignOrderIsRefused(t *testing.T) {
	t.Parallel()

	store := newCatalog(t)
	seedOrder(t, store, "X", "B")
	svc := newService(t, toolCall(contractx.ToolDeletePurchaseOrder, `{"purchase_order_id":"X"}`), store)

	out, err := svc.Interpret(context.Background(), "A", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationReply || !strings.Contains(out.Text, "another user") {
		t.Fatalf("unexpected interpretation: %#v", out)
	}
	if _, err := store.GetOrder(context.Background(), "X"); err != nil {
		t.Fatalf("order must still exist: %v", err)
	}
}

func TestInterpretDeleteWithoutCallerSkipsOwnership(t *testing.T) {
	t.Parallel()

	store := newCatalog(t)
	seedOrder(t, store, "X", "B")
	svc := newService(t, toolCall(contractx.ToolDeletePurchaseOrder, `{"purchase_order_id":"X"}`), store)

	out, err := svc.Interpret(context.Background(), "", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationApprovalRequired {
		t.Fatalf("Kind = %s, want APPROVAL_REQUIRED", out.Kind)
	}
}

func TestInterpretDeleteCorrectableFailures(t *testing.T) {
	t.Parallel()

	store := newCatalog(t)

	out, err := newService(t, toolCall(contractx.ToolDeletePurchaseOrder, `{}`), store).Interpret(context.Background(), "alice", userTurn)
	if err != nil || out.Kind != contractx.InterpretationReply || !strings.Contains(out.Text, "purchase_order_id") {
		t.Fatalf("missing id: out=%#v err=%v", out, err)
	}

	out, err = newService(t, toolCall(contractx.ToolDeletePurchaseOrder, `{"purchase_order_id":"nope"}`), store).Interpret(context.Background(), "alice", userTurn)
	if err != nil || out.Kind != contractx.InterpretationReply || !strings.Contains(out.Text, "`nope`") {
		t.Fatalf("unknown id: out=%#v err=%v", out, err)
	}
}

func TestInterpretUnknownToolFallsBackToReply(t *testing.T) {
	t.Parallel()

	svc := newService(t, toolCall("drop_all_tables", `{}`), newCatalog(t))
	out, err := svc.Interpret(context.Background(), "alice", userTurn)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if out.Kind != contractx.InterpretationReply || !strings.Contains(out.Text, "internal error") {
		t.Fatalf("unexpected interpretation: %#v", out)
	}
}

func TestInterpretValidatesConversation(t *testing.T) {
	t.Parallel()

	fake := &fakeProposer{proposal: contractx.Proposal{Text: "unused"}}
	svc := newService(t, fake, newCatalog(t))

	_, err := svc.Interpret(context.Background(), "alice", nil)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("empty conversation error = %v, want ErrValidation", err)
	}

	_, err = svc.Interpret(context.Background(), "alice", []contractx.ChatMessage{{Role: "system", Content: "x"}})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("bad role error = %v, want ErrValidation", err)
	}
	if fake.calls != 0 {
		t.Fatalf("proposer called %d times for invalid input", fake.calls)
	}
}

func TestInterpretPropagatesModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeProposer{err: errors.Join(contractx.ErrModelInvoke, errors.New("timeout"))}
	svc := newService(t, fake, newCatalog(t))

	_, err := svc.Interpret(context.Background(), "alice", userTurn)
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("error = %v, want ErrModelInvoke", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, memory.New()); err == nil {
		t.Fatal("expected error for nil proposer")
	}
	if _, err := New(&fakeProposer{}, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}
