package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 20
	minListLimit     = 1
)

var (
	ErrQuantityNotInteger  = errors.New("quantity is not a whole number")
	ErrQuantityNotPositive = errors.New("quantity must be greater than 0")
)

type CreateOrderArgs struct {
	Detail        string
	Quantity      any
	Justification string
}

type ListOrdersArgs struct {
	UserID string
	Date   string
	Status string
	Limit  int
}

type DeleteOrderArgs struct {
	PurchaseOrderID string
	Reason          string
}

// DecodeArgs parses model-serialized arguments. Anything that is not a JSON
// object decodes to an empty map and ok is false. Empty input is a valid
// empty object.
func DecodeArgs(raw string) (args map[string]any, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, true
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&args); err != nil || args == nil {
		return map[string]any{}, false
	}
	return args, true
}

func CreateArgsFrom(args map[string]any) CreateOrderArgs {
	return CreateOrderArgs{
		Detail:        stringArg(args, "detail"),
		Quantity:      args["quantity"],
		Justification: stringArg(args, "justification"),
	}
}

func ListArgsFrom(args map[string]any) ListOrdersArgs {
	return ListOrdersArgs{
		UserID: stringArg(args, "user_id"),
		Date:   stringArg(args, "date"),
		Status: stringArg(args, "status"),
		Limit:  ParseLimit(args["limit"]),
	}
}

func DeleteArgsFrom(args map[string]any) DeleteOrderArgs {
	return DeleteOrderArgs{
		PurchaseOrderID: stringArg(args, "purchase_order_id"),
		Reason:          stringArg(args, "reason"),
	}
}

// ParseQuantity accepts integers in any JSON encoding (number, numeric string,
// integral float) and rejects fractions, non-numbers and values <= 0.
func ParseQuantity(v any) (int, error) {
	n, err := parseInt(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, ErrQuantityNotPositive
	}
	return n, nil
}

// ParseLimit falls back to DefaultListLimit on anything unparsable and never
// returns less than 1.
func ParseLimit(v any) int {
	if v == nil {
		return DefaultListLimit
	}
	n, err := parseInt(v)
	if err != nil {
		return DefaultListLimit
	}
	return max(n, minListLimit)
}

func parseInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return intFromFloat(val)
	case json.Number:
		return intFromString(val.String())
	case string:
		return intFromString(val)
	default:
		return 0, fmt.Errorf("%w: %T", ErrQuantityNotInteger, v)
	}
}

func intFromString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrQuantityNotInteger, s)
	}
	return intFromFloat(f)
}

func intFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrQuantityNotInteger, f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %v out of range", ErrQuantityNotInteger, f)
	}
	return int(f), nil
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
