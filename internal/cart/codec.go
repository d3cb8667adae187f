package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var errNotArray = errors.New("persisted cart is not a JSON array")

type persistedItem struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Image    string      `json:"image"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

func encodeItems(items []LineItem) (string, error) {
	out := make([]persistedItem, 0, len(items))
	for _, item := range items {
		out = append(out, persistedItem{
			ID:       item.ID,
			Title:    item.Title,
			Image:    item.Image,
			Price:    json.Number(item.Price.String()),
			Quantity: item.Quantity,
		})
	}
	buf, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(buf), nil
}

// decodeItems parses the persisted representation leniently. Entries that are
// not objects or carry no usable id are dropped, scalar fields are coerced and
// quantity is floored at 1. Repeated ids are merged into the first occurrence.
func decodeItems(raw string) ([]LineItem, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	entries, ok := parsed.([]any)
	if !ok {
		return nil, errNotArray
	}

	items := make([]LineItem, 0, len(entries))
	index := make(map[int64]int, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, ok := coerceID(obj["id"])
		if !ok {
			continue
		}
		quantity := coerceQuantity(obj["quantity"])
		if pos, seen := index[id]; seen {
			items[pos].Quantity += quantity
			continue
		}
		index[id] = len(items)
		items = append(items, LineItem{
			ID:       id,
			Title:    coerceString(obj["title"]),
			Image:    coerceString(obj["image"]),
			Price:    coercePrice(obj["price"]),
			Quantity: quantity,
		})
	}
	return items, nil
}

func coerceID(v any) (int64, bool) {
	f, ok := coerceFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func coerceQuantity(v any) int {
	f, ok := coerceFloat(v)
	if !ok || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func coercePrice(v any) decimal.Decimal {
	switch val := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if !val {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(val)
	}
}

func coerceFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch val := v.(type) {
	case json.Number:
		f, err = val.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
