package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderItem is a point-in-time snapshot of a purchased product. It is stored
// as JSON inside the order row so later catalog edits never rewrite history.
type OrderItem struct {
	ProductID string `json:"product_id,omitempty"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Qty       int    `json:"qty,omitempty"`
}

// Quantity normalizes the historical payloads where a missing qty meant one.
func (i OrderItem) Quantity() int {
	if i.Qty <= 0 {
		return 1
	}
	return i.Qty
}

// OrderItems serializes an item snapshot into a JSON column.
type OrderItems []OrderItem

func (items *OrderItems) Scan(src any) error {
	if src == nil {
		*items = OrderItems{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("OrderItems: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*items = OrderItems{}
		return nil
	}
	return json.Unmarshal(raw, items)
}

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		items = OrderItems{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Total sums price times quantity across the snapshot.
func (items OrderItems) Total() int {
	total := 0
	for _, item := range items {
		total += item.Price * item.Quantity()
	}
	return total
}
