package session

import (
	"encoding/json"
	"strings"

	"github.com/layali-lounge/qrmenu-backend/internal/cart"
)

// Visit is the per-browser session state for one sitting: the cart, the table
// captured from the QR code, and whether this visitor has already submitted
// an order. All mutation goes through the methods below so the dirty flag
// stays accurate; the manager only writes visits back when something changed.
type Visit struct {
	tableNo      string
	hasSubmitted bool
	cart         cart.Cart

	dirty bool
}

type visitPayload struct {
	TableNo           string    `json:"table_no,omitempty"`
	HasSubmittedOrder bool      `json:"has_submitted_order,omitempty"`
	Cart              cart.Cart `json:"cart"`
}

// NewVisit returns a fresh, clean visit.
func NewVisit() *Visit {
	return &Visit{}
}

// TableNo returns the captured table number, empty when none.
func (v *Visit) TableNo() string {
	return v.tableNo
}

// HasSubmittedOrder reports whether this visit has checked out at least once.
func (v *Visit) HasSubmittedOrder() bool {
	return v.hasSubmitted
}

// Cart returns the visit's cart for reads. Mutate through the Visit methods.
func (v *Visit) Cart() *cart.Cart {
	return &v.cart
}

// Dirty reports whether the visit diverged from its loaded state.
func (v *Visit) Dirty() bool {
	return v.dirty
}

// SetTableNo captures the table number; blank input is ignored so a plain
// menu link never erases a previous QR scan.
func (v *Visit) SetTableNo(tableNo string) {
	tableNo = strings.TrimSpace(tableNo)
	if tableNo == "" || tableNo == v.tableNo {
		return
	}
	v.tableNo = tableNo
	v.dirty = true
}

// MarkSubmitted records that a checkout succeeded during this visit.
func (v *Visit) MarkSubmitted() {
	if v.hasSubmitted {
		return
	}
	v.hasSubmitted = true
	v.dirty = true
}

// AddItem accumulates qty onto the keyed cart row.
func (v *Visit) AddItem(key cart.Key, qty int, note string) {
	before, _ := v.cart.Row(key)
	v.cart.Add(key, qty, note)
	if after, _ := v.cart.Row(key); after != before {
		v.dirty = true
	}
}

// SetQuantity replaces the keyed row's quantity; zero removes it.
func (v *Visit) SetQuantity(key cart.Key, qty int) {
	if v.cart.Quantity(key) == qty && (qty > 0 || !hasRow(&v.cart, key)) {
		return
	}
	v.cart.SetQuantity(key, qty)
	v.dirty = true
}

// RemoveItem deletes the keyed row.
func (v *Visit) RemoveItem(key cart.Key) {
	if !hasRow(&v.cart, key) {
		return
	}
	v.cart.Remove(key)
	v.dirty = true
}

// ClearCart empties the cart and resets the submitted flag. Used when a stale
// session outlives its delivered order.
func (v *Visit) ClearCart() {
	if v.cart.IsEmpty() && !v.hasSubmitted {
		return
	}
	v.cart.Clear()
	v.hasSubmitted = false
	v.dirty = true
}

func hasRow(c *cart.Cart, key cart.Key) bool {
	_, ok := c.Row(key)
	return ok
}

// MarshalJSON implements json.Marshaler.
func (v *Visit) MarshalJSON() ([]byte, error) {
	return json.Marshal(visitPayload{
		TableNo:           v.tableNo,
		HasSubmittedOrder: v.hasSubmitted,
		Cart:              v.cart,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A decoded visit starts clean.
func (v *Visit) UnmarshalJSON(data []byte) error {
	var payload visitPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	v.tableNo = payload.TableNo
	v.hasSubmitted = payload.HasSubmittedOrder
	v.cart = payload.Cart
	v.dirty = false
	return nil
}
