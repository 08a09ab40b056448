package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

// Param describes one argument of a tool in a provider-neutral way.
type Param struct {
	Name     string
	Type     schema.DataType
	Desc     string
	Required bool
}

type Definition struct {
	Name   contractx.ToolName
	Desc   string
	Params []Param
	// Mutating tools never run directly; they produce an approval request.
	Mutating bool
}

// Definitions returns the three operations offered to the model, in a stable order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:     contractx.ToolCreatePurchaseOrder,
			Desc:     "Create a purchase order for a catalog product. Requires human approval.",
			Mutating: true,
			Params: []Param{
				{Name: "detail", Type: schema.String, Desc: "Product description as given by the user", Required: true},
				{Name: "quantity", Type: schema.Integer, Desc: "Number of units, a positive whole number", Required: true},
				{Name: "justification", Type: schema.String, Desc: "Business reason for the purchase"},
			},
		},
		{
			Name: contractx.ToolListPurchaseOrders,
			Desc: "List recorded purchase orders, newest first.",
			Params: []Param{
				{Name: "user_id", Type: schema.String, Desc: "Owner of the orders; defaults to the current user"},
				{Name: "date", Type: schema.String, Desc: "Purchase date in YYYY-MM-DD format"},
				{Name: "status", Type: schema.String, Desc: "Order status, for example EXECUTED"},
				{Name: "limit", Type: schema.Integer, Desc: "Maximum number of orders to return"},
			},
		},
		{
			Name:     contractx.ToolDeletePurchaseOrder,
			Desc:     "Delete a purchase order by id. Requires human approval.",
			Mutating: true,
			Params: []Param{
				{Name: "purchase_order_id", Type: schema.String, Desc: "Id of the purchase order to delete", Required: true},
				{Name: "reason", Type: schema.String, Desc: "Why the order is being deleted"},
			},
		},
	}
}

// Infos converts Definitions into eino tool infos for binding to a chat model.
func Infos() []*schema.ToolInfo {
	defs := Definitions()
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, d := range defs {
		params := make(map[string]*schema.ParameterInfo, len(d.Params))
		for _, p := range d.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     p.Type,
				Desc:     p.Desc,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        string(d.Name),
			Desc:        d.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// JSONSchema renders a definition's parameters as a JSON-schema object, the
// shape chat completion APIs expect for function parameters.
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		properties[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Desc,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func IsMutating(name contractx.ToolName) bool {
	for _, d := range Definitions() {
		if d.Name == name {
			return d.Mutating
		}
	}
	return false
}
