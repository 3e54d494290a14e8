package cart

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
)

const (
	// MaxNoteLen bounds the free-text note carried on a cart row.
	MaxNoteLen = 400

	// MaxQty caps a single row's quantity. Inputs above the cap are clamped,
	// never rejected.
	MaxQty = 50
)

// Key identifies a priceable catalog entry inside the cart. The string form
// ("p:<id>" / "o:<id>") is the persisted session representation.
type Key struct {
	Kind enums.ItemKind
	ID   uuid.UUID
}

// ProductKey builds the cart key for a product.
func ProductKey(id uuid.UUID) Key {
	return Key{Kind: enums.ItemKindProduct, ID: id}
}

// OfferKey builds the cart key for an offer.
func OfferKey(id uuid.UUID) Key {
	return Key{Kind: enums.ItemKindOffer, ID: id}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if k.Kind == enums.ItemKindOffer {
		return "o:" + k.ID.String()
	}
	return "p:" + k.ID.String()
}

// ParseKey converts the stable string form back into a Key.
func ParseKey(raw string) (Key, error) {
	prefix, rest, found := strings.Cut(raw, ":")
	if !found {
		return Key{}, fmt.Errorf("invalid cart key %q", raw)
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return Key{}, fmt.Errorf("invalid cart key %q: %w", raw, err)
	}
	switch prefix {
	case "p":
		return ProductKey(id), nil
	case "o":
		return OfferKey(id), nil
	default:
		return Key{}, fmt.Errorf("invalid cart key %q", raw)
	}
}

// Row holds the per-key state: a positive quantity and an optional note.
type Row struct {
	Qty  int
	Note string
}

// Cart is an ordered mapping from Key to Row. The zero value is an empty,
// usable cart. All operations are total: missing keys never error. The
// invariant that no row keeps a quantity <= 0 is maintained by SetQuantity.
// Dirty tracking for session persistence lives in the session adapter, not
// here.
type Cart struct {
	keys []Key
	rows map[Key]Row
}

func (c *Cart) ensure() {
	if c.rows == nil {
		c.rows = make(map[Key]Row)
	}
}

// Add upserts a row: quantity accumulates onto any existing row, and the note
// overwrites only when the new note is non-empty, so bare re-adds keep prior
// customizations. Non-positive quantities are ignored.
func (c *Cart) Add(key Key, qty int, note string) {
	if qty <= 0 {
		return
	}
	c.ensure()
	note = clampNote(note)
	row, ok := c.rows[key]
	if !ok {
		c.keys = append(c.keys, key)
	}
	row.Qty = clampQty(row.Qty + qty)
	if note != "" {
		row.Note = note
	}
	c.rows[key] = row
}

// Quantity returns the stored quantity, or 0 when the key is absent.
func (c *Cart) Quantity(key Key) int {
	if c.rows == nil {
		return 0
	}
	return c.rows[key].Qty
}

// SetQuantity replaces the quantity for key, leaving the note untouched. A
// quantity of zero or less removes the row entirely.
func (c *Cart) SetQuantity(key Key, qty int) {
	if qty <= 0 {
		c.Remove(key)
		return
	}
	c.ensure()
	row, ok := c.rows[key]
	if !ok {
		c.keys = append(c.keys, key)
	}
	row.Qty = clampQty(qty)
	c.rows[key] = row
}

// Remove deletes the row unconditionally; absent keys are a no-op.
func (c *Cart) Remove(key Key) {
	if c.rows == nil {
		return
	}
	if _, ok := c.rows[key]; !ok {
		return
	}
	delete(c.rows, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.keys = nil
	c.rows = nil
}

// Len returns the number of distinct rows.
func (c *Cart) Len() int {
	return len(c.keys)
}

// IsEmpty reports whether the cart holds no rows.
func (c *Cart) IsEmpty() bool {
	return len(c.keys) == 0
}

// Keys returns the cart keys in insertion order.
func (c *Cart) Keys() []Key {
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// Row returns the stored row for key.
func (c *Cart) Row(key Key) (Row, bool) {
	if c.rows == nil {
		return Row{}, false
	}
	row, ok := c.rows[key]
	return row, ok
}

// ItemCount sums the quantities across all rows (the cart badge number).
func (c *Cart) ItemCount() int {
	total := 0
	for _, row := range c.rows {
		total += row.Qty
	}
	return total
}

func clampQty(qty int) int {
	if qty > MaxQty {
		return MaxQty
	}
	return qty
}

func clampNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) <= MaxNoteLen {
		return note
	}
	// Back up to a rune boundary so multi-byte text is never cut mid-rune.
	cut := MaxNoteLen
	for cut > 0 && !utf8.RuneStart(note[cut]) {
		cut--
	}
	return note[:cut]
}
