package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OrderRequest is the wire form of POST /api/orders. Ids and quantities
// may arrive as numbers or numeric strings; shapes that cannot be read are
// kept as failures for PlaceOrder to report in its usual order.
type OrderRequest struct {
	CartItems           json.RawMessage `json:"cartItems"`
	DeliveryAddressID   json.RawMessage `json:"deliveryAddressId"`
	PaymentMethod       json.RawMessage `json:"paymentMethod"`
	DeliveryTimeSlot    json.RawMessage `json:"deliveryTimeSlot"`
	SpecialInstructions json.RawMessage `json:"specialInstructions"`
	IdempotencyKey      json.RawMessage `json:"idempotencyKey"`
}

// Input normalises the request.
func (r OrderRequest) Input() PlaceOrderInput {
	in := PlaceOrderInput{
		DeliveryTimeSlot:    looseString(r.DeliveryTimeSlot),
		SpecialInstructions: looseString(r.SpecialInstructions),
	}
	if s := looseString(r.PaymentMethod); s != nil {
		in.PaymentMethod = *s
	}
	if s := looseString(r.IdempotencyKey); s != nil {
		in.IdempotencyKey = *s
	}

	if id, ok := looseInt(r.DeliveryAddressID); ok && id >= 0 {
		in.DeliveryAddressID = uint(id)
	} else {
		in.malformedAddress = true
	}

	in.CartItems, in.malformedCart = looseCart(r.CartItems)
	return in
}

type wireCartLine struct {
	MenuItemID json.RawMessage `json:"menuItemId"`
	Quantity   json.RawMessage `json:"quantity"`
}

// looseCart reads cartItems. An unreadable menuItemId becomes 0, which no
// menu item has, so the line reads as unavailable.
func looseCart(raw json.RawMessage) ([]CartItem, bool) {
	if isBlank(raw) {
		return nil, false
	}
	var lines []json.RawMessage
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, true
	}

	cart := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		var line wireCartLine
		if err := json.Unmarshal(l, &line); err != nil {
			return nil, true
		}
		qty, ok := looseInt(line.Quantity)
		if !ok || qty < 0 || qty > maxLineQuantity {
			return nil, true
		}
		var id uint
		if n, ok := looseInt(line.MenuItemID); ok && n > 0 {
			id = uint(n)
		}
		cart = append(cart, CartItem{MenuItemID: id, Quantity: int(qty)})
	}
	return cart, false
}

func isBlank(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// looseInt reads a JSON integer or a string holding one. Absent, null,
// false and "" read as 0; ok is false for anything else.
func looseInt(raw json.RawMessage) (n int64, ok bool) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return 0, true
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		num = json.Number(strings.TrimSpace(s))
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// looseString reads a string or number; anything else is nil.
func looseString(raw json.RawMessage) *string {
	if isBlank(raw) {
		return nil
	}
	s, err := stringValue(raw)
	if err != nil {
		return nil
	}
	return s
}
